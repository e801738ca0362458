package codec

import (
	_ "embed"
	"strings"

	"github.com/JiscSD/rdss-datacite-transcoder/model"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	pathSeparator       = ">"
	pathJoiner          = " > "
	defaultTermLanguage = "en"
)

type Family string

const (
	FamilyGCMD Family = "gcmd"
	FamilyMSL  Family = "msl"
)

// Vocabulary describes a controlled vocabulary.
type Vocabulary struct {
	ID        string `yaml:"id"`
	Family    Family `yaml:"family"`
	Prefix    string `yaml:"prefix"`
	SchemeURI string `yaml:"schemeURI"`
}

//go:embed vocabularies.yaml
var vocabulariesDocument []byte

var vocabularies = mustLoadVocabularies(vocabulariesDocument)

func loadVocabularies(blob []byte) ([]Vocabulary, error) {
	doc := struct {
		Vocabularies []Vocabulary `yaml:"vocabularies"`
	}{}
	if err := yaml.Unmarshal(blob, &doc); err != nil {
		return nil, errors.Wrap(err, "error decoding vocabularies")
	}
	for _, v := range doc.Vocabularies {
		if v.ID == "" {
			return nil, errors.New("vocabulary without id")
		}
		if v.Family == FamilyGCMD && v.Prefix == "" {
			return nil, errors.Errorf("vocabulary %q has no prefix", v.ID)
		}
	}
	return doc.Vocabularies, nil
}

func mustLoadVocabularies(blob []byte) []Vocabulary {
	v, err := loadVocabularies(blob)
	if err != nil {
		panic(err)
	}
	return v
}

// Vocabularies returns the known vocabularies.
func Vocabularies() []Vocabulary {
	ret := make([]Vocabulary, len(vocabularies))
	copy(ret, vocabularies)
	return ret
}

// LookupVocabulary finds a vocabulary by its exact subjectScheme identifier.
func LookupVocabulary(id string) (Vocabulary, bool) {
	for _, v := range vocabularies {
		if v.ID == id {
			return v, true
		}
	}
	return Vocabulary{}, false
}

// ControlledTerm is a subject that belongs to a controlled vocabulary.
type ControlledTerm struct {
	ID        string
	Text      string
	Path      string
	Language  string
	Scheme    string
	SchemeURI string
}

// ClassifySubject decides whether s is a free keyword or a controlled term.
// Any other combination of scheme attributes is incomplete and comes with an
// *UnrecognizedVocabularySchemeError.
func ClassifySubject(s model.Subject) (model.SubjectKind, error) {
	if !s.HasSchemeAttributes() {
		return model.SubjectFree, nil
	}
	if _, ok := LookupVocabulary(s.Scheme); ok && strings.TrimSpace(s.ValueURI) != "" {
		return model.SubjectControlled, nil
	}
	return model.SubjectIncomplete, &UnrecognizedVocabularySchemeError{
		Subject:   subjectText(s),
		Scheme:    s.Scheme,
		SchemeURI: s.SchemeURI,
		ValueURI:  s.ValueURI,
	}
}

func subjectKind(s model.Subject) model.SubjectKind {
	if s.Kind != model.SubjectUnclassified {
		return s.Kind
	}
	kind, _ := ClassifySubject(s)
	return kind
}

func subjectText(s model.Subject) string {
	if s.Path != "" {
		return s.Path
	}
	return s.Value
}

// ExtractFreeKeywords returns the text of every subject without scheme
// attributes, trimmed. Blank subjects are skipped.
func ExtractFreeKeywords(subjects []model.Subject) []string {
	var keywords []string
	for _, s := range subjects {
		if s.HasSchemeAttributes() {
			continue
		}
		text := strings.TrimSpace(s.Value)
		if text == "" {
			continue
		}
		keywords = append(keywords, text)
	}
	return keywords
}

// ExtractControlledKeywords returns the terms of the given vocabulary. Only
// subjects whose scheme matches vocabularyID exactly and that carry a
// valueURI are considered.
func ExtractControlledKeywords(subjects []model.Subject, vocabularyID string) []ControlledTerm {
	var terms []ControlledTerm
	for _, s := range subjects {
		if s.Scheme != vocabularyID || strings.TrimSpace(s.ValueURI) == "" {
			continue
		}
		segments := parseVocabularyPath(vocabularyID, subjectText(s))
		if len(segments) == 0 {
			continue
		}
		term := ControlledTerm{
			ID:        strings.TrimSpace(s.ValueURI),
			Text:      segments[len(segments)-1],
			Path:      strings.Join(segments, pathJoiner),
			Language:  s.Language,
			Scheme:    s.Scheme,
			SchemeURI: s.SchemeURI,
		}
		if term.Language == "" {
			term.Language = defaultTermLanguage
		}
		if term.SchemeURI == "" {
			if v, ok := LookupVocabulary(vocabularyID); ok {
				term.SchemeURI = v.SchemeURI
			}
		}
		terms = append(terms, term)
	}
	return terms
}

// ParseHierarchicalPath splits a path such as
// "Science Keywords > EARTH SCIENCE > ATMOSPHERE" into its segments. The GCMD
// vocabulary type prefix is stripped, case-insensitively.
func ParseHierarchicalPath(raw string) []string {
	path := strings.TrimSpace(raw)
	for _, v := range vocabularies {
		if v.Family != FamilyGCMD {
			continue
		}
		if rest, ok := stripPrefix(path, v.Prefix); ok {
			path = rest
			break
		}
	}
	return splitPath(path)
}

// parseVocabularyPath splits raw as a path of the given vocabulary: only the
// prefix of that vocabulary is stripped, and only for the GCMD family.
func parseVocabularyPath(vocabularyID, raw string) []string {
	path := strings.TrimSpace(raw)
	if v, ok := LookupVocabulary(vocabularyID); ok && v.Family == FamilyGCMD {
		if rest, ok := stripPrefix(path, v.Prefix); ok {
			path = rest
		}
	}
	return splitPath(path)
}

func stripPrefix(path, prefix string) (string, bool) {
	if len(path) < len(prefix) || !strings.EqualFold(path[:len(prefix)], prefix) {
		return path, false
	}
	rest := strings.TrimLeft(path[len(prefix):], " \t")
	if !strings.HasPrefix(rest, pathSeparator) {
		return path, false
	}
	return rest[len(pathSeparator):], true
}

func splitPath(path string) []string {
	var segments []string
	for _, segment := range strings.Split(path, pathSeparator) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		segments = append(segments, segment)
	}
	return segments
}

// FormatHierarchicalPath joins segments back into a path. GCMD paths get their
// vocabulary type prefix back.
func FormatHierarchicalPath(vocabularyID string, segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	path := strings.Join(segments, pathJoiner)
	if v, ok := LookupVocabulary(vocabularyID); ok && v.Family == FamilyGCMD {
		return v.Prefix + pathJoiner + path
	}
	return path
}

// EncodeSubject prepares a subject for output. Free keywords lose every scheme
// attribute, controlled terms always carry them: GCMD terms are written as
// their prefixed path and MSL terms as their leaf. Incomplete subjects are
// returned untouched so that validation can reject them.
func EncodeSubject(s model.Subject) model.Subject {
	switch subjectKind(s) {
	case model.SubjectFree:
		return model.Subject{
			Value:    strings.TrimSpace(s.Value),
			Language: s.Language,
			Kind:     model.SubjectFree,
		}
	case model.SubjectControlled:
		v, _ := LookupVocabulary(s.Scheme)
		segments := parseVocabularyPath(v.ID, subjectText(s))
		encoded := model.Subject{
			Path:               FormatHierarchicalPath(v.ID, segments),
			Language:           s.Language,
			Scheme:             v.ID,
			SchemeURI:          s.SchemeURI,
			ValueURI:           strings.TrimSpace(s.ValueURI),
			ClassificationCode: s.ClassificationCode,
			Kind:               model.SubjectControlled,
		}
		if encoded.SchemeURI == "" {
			encoded.SchemeURI = v.SchemeURI
		}
		switch {
		case v.Family == FamilyGCMD:
			encoded.Value = encoded.Path
		case len(segments) > 0:
			encoded.Value = segments[len(segments)-1]
		}
		return encoded
	default:
		s.Value = strings.TrimSpace(s.Value)
		s.Kind = model.SubjectIncomplete
		return s
	}
}
