package domain

import (
	"encoding/json"
	"sort"
)

// DefaultLocale is used when the requested locale has no entry.
const DefaultLocale = "en"

// Localized is a per-locale text, e.g. {"en": "...", "id": "...", "ja": "..."}.
// A plain JSON string decodes into the default locale.
type Localized map[string]string

// Localize resolves the text for locale, falling back to DefaultLocale and then to the
// lexically first locale present.
func (l Localized) Localize(locale string) string {
	if s, ok := l[locale]; ok {
		return s
	}
	if s, ok := l[DefaultLocale]; ok {
		return s
	}
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	return l[keys[0]]
}

func (l *Localized) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*l = Localized{DefaultLocale: plain}
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*l = m
	return nil
}

// LocalizedOptions is a per-locale option list. Every locale lists options in the same order.
type LocalizedOptions map[string][]string

// Localize resolves the option list for locale with the same fallback as Localized.
func (o LocalizedOptions) Localize(locale string) []string {
	if opts, ok := o[locale]; ok {
		return opts
	}
	if opts, ok := o[DefaultLocale]; ok {
		return opts
	}
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	return o[keys[0]]
}

func (o *LocalizedOptions) UnmarshalJSON(data []byte) error {
	var plain []string
	if err := json.Unmarshal(data, &plain); err == nil {
		*o = LocalizedOptions{DefaultLocale: plain}
		return nil
	}
	var m map[string][]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*o = m
	return nil
}

// QuestionView is a question resolved for display in one locale.
type QuestionView struct {
	Index    int      `json:"index"`
	Total    int      `json:"total"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options"`
	VideoURL string   `json:"videoUrl,omitempty"`
}

// ViewQuestion resolves question i of a for locale.
func (a Assessment) ViewQuestion(i int, locale string) QuestionView {
	q := a.Questions[i]
	return QuestionView{
		Index:    i,
		Total:    len(a.Questions),
		Prompt:   q.Prompt.Localize(locale),
		Options:  q.Options.Localize(locale),
		VideoURL: q.VideoURL,
	}
}
