package model

import "strings"

// TitleType is the DataCite titleType. The zero value is the main title,
// which DataCite represents by omitting the attribute.
type TitleType string

const (
	TitleTypeMain            TitleType = ""
	TitleTypeAlternative     TitleType = "AlternativeTitle"
	TitleTypeSubtitle        TitleType = "Subtitle"
	TitleTypeTranslatedTitle TitleType = "TranslatedTitle"
	TitleTypeOther           TitleType = "Other"
)

// ParseTitleType falls back to the main title for unknown or empty values
// and for the "MainTitle" spelling used by some producers.
func ParseTitleType(s string) TitleType {
	for _, tt := range []TitleType{TitleTypeAlternative, TitleTypeSubtitle, TitleTypeTranslatedTitle, TitleTypeOther} {
		if strings.EqualFold(strings.TrimSpace(s), string(tt)) {
			return tt
		}
	}
	return TitleTypeMain
}

// DescriptionType is the DataCite descriptionType. Abstract is canonical.
type DescriptionType string

const (
	DescriptionTypeAbstract          DescriptionType = "Abstract"
	DescriptionTypeMethods           DescriptionType = "Methods"
	DescriptionTypeSeriesInformation DescriptionType = "SeriesInformation"
	DescriptionTypeTableOfContents   DescriptionType = "TableOfContents"
	DescriptionTypeTechnicalInfo     DescriptionType = "TechnicalInfo"
	DescriptionTypeOther             DescriptionType = "Other"
)

func ParseDescriptionType(s string) DescriptionType {
	for _, dt := range []DescriptionType{
		DescriptionTypeMethods,
		DescriptionTypeSeriesInformation,
		DescriptionTypeTableOfContents,
		DescriptionTypeTechnicalInfo,
		DescriptionTypeOther,
	} {
		if strings.EqualFold(strings.TrimSpace(s), string(dt)) {
			return dt
		}
	}
	return DescriptionTypeAbstract
}

// Role is the part an agent plays in a resource. Creators carry RoleCreator,
// contributors carry one of the contributor roles.
type Role string

const (
	RoleCreator               Role = "creator"
	RoleContactPerson         Role = "contact-person"
	RoleDataCollector         Role = "data-collector"
	RoleDataCurator           Role = "data-curator"
	RoleDataManager           Role = "data-manager"
	RoleDistributor           Role = "distributor"
	RoleEditor                Role = "editor"
	RoleHostingInstitution    Role = "hosting-institution"
	RoleProducer              Role = "producer"
	RoleProjectLeader         Role = "project-leader"
	RoleProjectManager        Role = "project-manager"
	RoleProjectMember         Role = "project-member"
	RoleRegistrationAgency    Role = "registration-agency"
	RoleRegistrationAuthority Role = "registration-authority"
	RoleRelatedPerson         Role = "related-person"
	RoleResearcher            Role = "researcher"
	RoleResearchGroup         Role = "research-group"
	RoleRightsHolder          Role = "rights-holder"
	RoleSponsor               Role = "sponsor"
	RoleSupervisor            Role = "supervisor"
	RoleWorkPackageLeader     Role = "work-package-leader"
	RoleOther                 Role = "other"
)

var contributorTypes = map[Role]string{
	RoleContactPerson:         "ContactPerson",
	RoleDataCollector:         "DataCollector",
	RoleDataCurator:           "DataCurator",
	RoleDataManager:           "DataManager",
	RoleDistributor:           "Distributor",
	RoleEditor:                "Editor",
	RoleHostingInstitution:    "HostingInstitution",
	RoleProducer:              "Producer",
	RoleProjectLeader:         "ProjectLeader",
	RoleProjectManager:        "ProjectManager",
	RoleProjectMember:         "ProjectMember",
	RoleRegistrationAgency:    "RegistrationAgency",
	RoleRegistrationAuthority: "RegistrationAuthority",
	RoleRelatedPerson:         "RelatedPerson",
	RoleResearcher:            "Researcher",
	RoleResearchGroup:         "ResearchGroup",
	RoleRightsHolder:          "RightsHolder",
	RoleSponsor:               "Sponsor",
	RoleSupervisor:            "Supervisor",
	RoleWorkPackageLeader:     "WorkPackageLeader",
	RoleOther:                 "Other",
}

// ContributorType returns the DataCite contributorType for the role. Roles
// without a contributor equivalent (e.g. RoleCreator) map to "Other".
func (r Role) ContributorType() string {
	if ct, ok := contributorTypes[r]; ok {
		return ct
	}
	return contributorTypes[RoleOther]
}

// ParseContributorType maps a DataCite contributorType to a Role, unknown
// values map to RoleOther.
func ParseContributorType(s string) Role {
	s = strings.TrimSpace(s)
	for role, ct := range contributorTypes {
		if strings.EqualFold(s, ct) {
			return role
		}
	}
	return RoleOther
}

// ParseRole matches a role slug.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r == RoleCreator {
		return r, true
	}
	_, ok := contributorTypes[r]
	return r, ok
}
