// Package rules holds the heuristic rule tables used by the extraction
// engine: abstract start/stop patterns, author label patterns, deny lists,
// and tunable thresholds. The tables are ordered (earlier rules win) and
// immutable once compiled, so the detector and resolvers can be unit-tested
// against a fixed Ruleset. Defaults are compiled in; a YAML rules file can
// adjust thresholds and append custom patterns.
package rules

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"pdf-abstract/internal/types"
)

// CJKClass 中日韓文字的字元區段（含全形標點，用於 has-CJK 判斷）
const CJKClass = `\x{2E80}-\x{2FFF}\x{3000}-\x{303F}\x{31C0}-\x{31EF}\x{3400}-\x{4DBF}\x{4E00}-\x{9FFF}\x{F900}-\x{FAFF}`

// HanClass 僅漢字區段（用於姓名比對，排除標點）
const HanClass = `\x{4E00}-\x{9FFF}`

var cjkRe = regexp.MustCompile(`[` + CJKClass + `]`)

// HasCJK reports whether s contains any CJK character.
func HasCJK(s string) bool {
	return cjkRe.MatchString(s)
}

// StartRule matches an abstract heading line. When Inline is true the rule
// captures trailing body text in group 1 (e.g. 「摘要：本研究…」).
type StartRule struct {
	Name   string
	Re     *regexp.Regexp
	Inline bool
}

// StopRule matches a line that terminates the abstract region. The matching
// line itself is excluded from the abstract.
type StopRule struct {
	Name string
	Re   *regexp.Regexp
}

// LabelRule matches an explicit author label line. When NextLine is true the
// label stands alone and the name is expected on the following line;
// otherwise the name is captured in the group named "name".
type LabelRule struct {
	Name     string
	Re       *regexp.Regexp
	NextLine bool
}

// Thresholds 可调的启发式常量
// The exact boundary values are heuristic, not law; they are exposed here so
// a rules file can adjust them without a code change.
type Thresholds struct {
	// MaxAbstractPages bounds how many pages an abstract may span.
	MaxAbstractPages int `yaml:"max_abstract_pages"`
	// TitlePunctLimit is how many punctuation marks a superstring title
	// candidate line may carry.
	TitlePunctLimit int `yaml:"title_punct_limit"`
	// TitleMaxRunes caps the length of an expanded title.
	TitleMaxRunes int `yaml:"title_max_runes"`
	// TitleMinExtraRunes is the minimum length gain a superstring
	// expansion must provide over the filename title.
	TitleMinExtraRunes int `yaml:"title_min_extra_runes"`
	// ContinuationMaxRunes caps a one-step title continuation line.
	ContinuationMaxRunes int `yaml:"continuation_max_runes"`
	// NameGroupMin/Max bound each half of a CJK name (姓/名), so a full
	// name spans 2×min to 2×max runes.
	NameGroupMin int `yaml:"name_group_min"`
	NameGroupMax int `yaml:"name_group_max"`
	// GuessWindowLines bounds how many lines the unlabelled author guess
	// scans.
	GuessWindowLines int `yaml:"guess_window_lines"`
	// SoftStopMinLines is how many body lines must be collected before a
	// header-looking line may soft-stop the abstract.
	SoftStopMinLines int `yaml:"soft_stop_min_lines"`
	// LabelWindowNarrow/Wide are the author search windows in pages.
	LabelWindowNarrow int `yaml:"label_window_narrow"`
	LabelWindowWide   int `yaml:"label_window_wide"`
}

// Ruleset 不可变的规则集合，编译后供各组件共享
type Ruleset struct {
	Start        []StartRule
	Stop         []StopRule
	AuthorLabels []LabelRule

	// TitleDeny rejects page-furniture lines (school/department/advisor
	// labels) from title candidacy.
	TitleDeny *regexp.Regexp
	// BadLeading rejects narrative sentence openers (本研究/本文/…).
	BadLeading *regexp.Regexp
	// InnerPunct counts sentence punctuation inside a candidate line.
	InnerPunct *regexp.Regexp
	// ContextHint marks academic-context lines near which a bare name is
	// plausible.
	ContextHint *regexp.Regexp
	// AdvisorHint marks advisor/supervisor lines for the structural
	// author fallback.
	AdvisorHint *regexp.Regexp
	// CJKName matches a bare 2–4 rune Chinese name, two groups.
	CJKName *regexp.Regexp
	// LatinName matches a capitalized Latin name token run.
	LatinName *regexp.Regexp
	// Stopwords are tokens a name candidate must not contain.
	Stopwords []string

	Thresholds Thresholds
}

// DefaultThresholds returns the built-in threshold values.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxAbstractPages:     3,
		TitlePunctLimit:      3,
		TitleMaxRunes:        80,
		TitleMinExtraRunes:   2,
		ContinuationMaxRunes: 60,
		NameGroupMin:         1,
		NameGroupMax:         2,
		GuessWindowLines:     150,
		SoftStopMinLines:     5,
		LabelWindowNarrow:    3,
		LabelWindowWide:      8,
	}
}

// Default returns the built-in Ruleset.
func Default() *Ruleset {
	rs, err := compile(DefaultThresholds(), nil, nil)
	if err != nil {
		// The built-in patterns are constants; a failure here is a
		// programming error.
		panic(err)
	}
	return rs
}

// fileRules is the YAML shape of a rules override file.
type fileRules struct {
	Thresholds         Thresholds `yaml:",inline"`
	ExtraStartPatterns []struct {
		Name    string `yaml:"name"`
		Pattern string `yaml:"pattern"`
		Inline  bool   `yaml:"inline"`
	} `yaml:"extra_start_patterns"`
	ExtraStopPatterns []struct {
		Name    string `yaml:"name"`
		Pattern string `yaml:"pattern"`
	} `yaml:"extra_stop_patterns"`
}

// Load reads a YAML rules file and merges it over the defaults.
// Zero-valued thresholds keep their default; extra patterns are appended
// after the built-in tables, preserving built-in priority.
func Load(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewAppError(types.ErrRules, "無法讀取規則檔", err)
	}
	var fr fileRules
	if err := yaml.Unmarshal(data, &fr); err != nil {
		return nil, types.NewAppError(types.ErrRules, "規則檔格式錯誤", err)
	}

	th := DefaultThresholds()
	mergeThresholds(&th, fr.Thresholds)

	var extraStart []StartRule
	for _, p := range fr.ExtraStartPatterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, types.NewAppErrorWithDetails(types.ErrRules, "起始樣式無法編譯", p.Pattern, err)
		}
		extraStart = append(extraStart, StartRule{Name: p.Name, Re: re, Inline: p.Inline})
	}
	var extraStop []StopRule
	for _, p := range fr.ExtraStopPatterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, types.NewAppErrorWithDetails(types.ErrRules, "結束樣式無法編譯", p.Pattern, err)
		}
		extraStop = append(extraStop, StopRule{Name: p.Name, Re: re})
	}

	return compile(th, extraStart, extraStop)
}

func mergeThresholds(dst *Thresholds, src Thresholds) {
	if src.MaxAbstractPages > 0 {
		dst.MaxAbstractPages = src.MaxAbstractPages
	}
	if src.TitlePunctLimit > 0 {
		dst.TitlePunctLimit = src.TitlePunctLimit
	}
	if src.TitleMaxRunes > 0 {
		dst.TitleMaxRunes = src.TitleMaxRunes
	}
	if src.TitleMinExtraRunes > 0 {
		dst.TitleMinExtraRunes = src.TitleMinExtraRunes
	}
	if src.ContinuationMaxRunes > 0 {
		dst.ContinuationMaxRunes = src.ContinuationMaxRunes
	}
	if src.NameGroupMin > 0 {
		dst.NameGroupMin = src.NameGroupMin
	}
	if src.NameGroupMax > 0 {
		dst.NameGroupMax = src.NameGroupMax
	}
	if src.GuessWindowLines > 0 {
		dst.GuessWindowLines = src.GuessWindowLines
	}
	if src.SoftStopMinLines > 0 {
		dst.SoftStopMinLines = src.SoftStopMinLines
	}
	if src.LabelWindowNarrow > 0 {
		dst.LabelWindowNarrow = src.LabelWindowNarrow
	}
	if src.LabelWindowWide > 0 {
		dst.LabelWindowWide = src.LabelWindowWide
	}
}

func compile(th Thresholds, extraStart []StartRule, extraStop []StopRule) (*Ruleset, error) {
	rs := &Ruleset{Thresholds: th}

	// 起始樣式：獨立標題行優先於內嵌形式
	rs.Start = []StartRule{
		{Name: "摘要", Re: regexp.MustCompile(`^\s*(?:中文)?摘要\s*[：:]?\s*$`)},
		{Name: "摘要-inline", Re: regexp.MustCompile(`^\s*(?:中文)?摘要\s*[：:]\s*(.+)$`), Inline: true},
		{Name: "abstract", Re: regexp.MustCompile(`(?i)^\s*ABSTRACT\s*[：:]?\s*$`)},
		{Name: "abstract-inline", Re: regexp.MustCompile(`(?i)^\s*Abstract\s*[：:]\s*(.+)$`), Inline: true},
	}
	rs.Start = append(rs.Start, extraStart...)

	// 結束樣式：關鍵字 / 參考文獻 / 第一章標題等
	rs.Stop = []StopRule{
		{Name: "keywords", Re: regexp.MustCompile(`^\s*(?:關鍵[詞字]|关键词)\s*[：:]?`)},
		{Name: "keywords", Re: regexp.MustCompile(`(?i)^\s*Keywords?\b`)},
		{Name: "keywords", Re: regexp.MustCompile(`(?i)^\s*Index\s+Terms\b`)},
		{Name: "toc", Re: regexp.MustCompile(`^\s*(?:目錄|目次)\s*$`)},
		// RE2 的 \b 只认 ASCII 词界，中日韩字后不成立，故中英分列
		{Name: "references", Re: regexp.MustCompile(`^\s*(?:參考文獻|参考文献)`)},
		{Name: "references", Re: regexp.MustCompile(`(?i)^\s*References\b`)},
		{Name: "acknowledgements", Re: regexp.MustCompile(`^\s*(?:致謝|誌謝)`)},
		{Name: "chapter", Re: regexp.MustCompile(`^\s*(?:引言|緒論)`)},
		{Name: "chapter", Re: regexp.MustCompile(`(?i)^\s*Introduction\b`)},
		{Name: "chapter", Re: regexp.MustCompile(`^\s*\d+\s*[.、]\s*\S+`)},
		{Name: "chapter", Re: regexp.MustCompile(`^\s*[一二三四五六七八九十]+、`)},
	}
	rs.Stop = append(rs.Stop, extraStop...)

	nameChars := `[` + HanClass + `A-Za-z .・．。-]{2,}`
	rs.AuthorLabels = []LabelRule{
		{Name: "作者", Re: regexp.MustCompile(`^\s*作者\s*[：:]\s*(?P<name>.+?)\s*$`)},
		{Name: "作者-nextline", Re: regexp.MustCompile(`^\s*作者\s*[：:]?\s*$`), NextLine: true},
		{Name: "研究生", Re: regexp.MustCompile(`^\s*(?:研究生|研 究 生|學生|学生)\s*[：:]?\s*(?P<name>` + nameChars + `)\s*$`)},
		{Name: "姓名", Re: regexp.MustCompile(`^\s*姓\s*名\s*[：:]?\s*(?P<name>` + nameChars + `)\s*$`)},
		{Name: "論文作者", Re: regexp.MustCompile(`^\s*(?:論文作者|作者姓名|畢業生)\s*[：:]?\s*(?P<name>` + nameChars + `)\s*$`)},
		{Name: "author", Re: regexp.MustCompile(`(?i)^\s*Authors?\s*[：:]\s*(?P<name>.+?)\s*$`)},
		{Name: "student", Re: regexp.MustCompile(`(?i)^\s*Student\s*[：:]\s*(?P<name>.+?)\s*$`)},
	}

	rs.TitleDeny = regexp.MustCompile(`(大學|學校|學院|系|所|研究所|學位|指導|導師|教授|學號|目錄|目次|致謝|誌謝|謝辭|關鍵字|关键词)`)
	rs.BadLeading = regexp.MustCompile(`^(本研究|本文|本論文|因此|然而|在本研究中|在本論文中)`)
	rs.InnerPunct = regexp.MustCompile(`[，。、；：！？()（）\[\]【】·,.;:!]`)
	rs.ContextHint = regexp.MustCompile(`(大學|學校|學院|系|所|研究所|學位|論文|指導|教授|學號)`)
	rs.AdvisorHint = regexp.MustCompile(`(?i)(指導|導師|教授|Advisor|Supervisor)`)

	// 姓名樣式由阈值拼出，便于调整字数边界
	rs.CJKName = regexp.MustCompile(fmt.Sprintf(
		`^[\s　]*([%s]{%d,%d})\s?([%s]{%d,%d})[\s　]*$`,
		HanClass, th.NameGroupMin, th.NameGroupMax,
		HanClass, th.NameGroupMin, th.NameGroupMax))
	rs.LatinName = regexp.MustCompile(`^\s*[A-Z][a-z]+(?:[-' ][A-Z][a-z]+){1,3}\s*$`)

	rs.Stopwords = []string{
		// 章節與結構
		"摘要", "中文摘要", "英文摘要", "Abstract", "ABSTRACT",
		"關鍵字", "关键词", "關鍵詞", "Keywords",
		"目錄", "目次", "附錄",
		"引言", "緒論", "前言", "導論",
		"參考文獻", "参考文献", "References",
		"方法", "結果", "討論", "結論",
		// 身分與標籤
		"作者", "姓名", "研究生", "學生",
		"指導", "導師", "教授",
		// 校系與學位
		"大學", "學校", "學院", "研究所", "學位", "學程", "學號",
		// 其他常見頁面欄位
		"致謝", "誌謝", "謝辭", "封面", "審定書", "口試", "委員",
	}

	return rs, nil
}

// MatchStart returns the first start rule matching line, with any inline
// body text the rule captured, or nil.
func (rs *Ruleset) MatchStart(line string) (*StartRule, string) {
	for i := range rs.Start {
		r := &rs.Start[i]
		m := r.Re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		inline := ""
		if r.Inline && len(m) > 1 {
			inline = m[1]
		}
		return r, inline
	}
	return nil, ""
}

// MatchStop returns the first stop rule matching line, or nil.
func (rs *Ruleset) MatchStop(line string) *StopRule {
	for i := range rs.Stop {
		if rs.Stop[i].Re.MatchString(line) {
			return &rs.Stop[i]
		}
	}
	return nil
}

// IsStopword reports whether candidate contains any stopword token.
func (rs *Ruleset) IsStopword(candidate string) bool {
	for _, w := range rs.Stopwords {
		if w != "" && strings.Contains(candidate, w) {
			return true
		}
	}
	return false
}
