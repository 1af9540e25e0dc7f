package textstats

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrEmptyVocabulary = errors.New("empty vocabulary: documents contain only stop words")

var tokenPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)

type Norm string

const (
	NormNone Norm = ""
	NormL1   Norm = "l1"
	NormL2   Norm = "l2"
)

// Vectorizer turns documents into TF-IDF weighted term vectors.
type Vectorizer struct {
	StopWords   map[string]struct{}
	NgramMin    int
	NgramMax    int
	MaxFeatures int
	Norm        Norm
	SmoothIDF   bool
	SublinearTF bool
}

// NewVectorizer returns a unigram+bigram vectorizer capped at 500 terms,
// L2-normalized, without IDF smoothing.
func NewVectorizer(stopWords map[string]struct{}) *Vectorizer {
	return &Vectorizer{
		StopWords:   stopWords,
		NgramMin:    1,
		NgramMax:    2,
		MaxFeatures: 500,
		Norm:        NormL2,
	}
}

// Matrix holds one weighted row per document. Columns follow Terms, which is
// sorted alphabetically.
type Matrix struct {
	Terms []string
	IDF   []float64
	Rows  [][]float64
}

// Column returns the sum of a term's weights across all documents.
func (m *Matrix) Column(idx int) float64 {
	var sum float64
	for _, row := range m.Rows {
		sum += row[idx]
	}
	return sum
}

// Weights maps every vocabulary term to its summed weight.
func (m *Matrix) Weights() map[string]float64 {
	out := make(map[string]float64, len(m.Terms))
	for idx, term := range m.Terms {
		out[term] = m.Column(idx)
	}
	return out
}

// Analyze lowercases doc, tokenizes it, drops stop words and returns the
// configured n-grams.
func (v *Vectorizer) Analyze(doc string) []string {
	return v.analyze(cases.Lower(language.Und), doc)
}

func (v *Vectorizer) analyze(lower cases.Caser, doc string) []string {
	tokens := tokenPattern.FindAllString(lower.String(doc), -1)
	kept := tokens[:0]
	for _, token := range tokens {
		if _, stop := v.StopWords[token]; stop {
			continue
		}
		kept = append(kept, token)
	}

	minN, maxN := v.NgramMin, v.NgramMax
	if minN < 1 {
		minN = 1
	}
	if maxN < minN {
		maxN = minN
	}

	var terms []string
	for n := minN; n <= maxN && n <= len(kept); n++ {
		for i := 0; i+n <= len(kept); i++ {
			terms = append(terms, strings.Join(kept[i:i+n], " "))
		}
	}
	return terms
}

// FitTransform learns the vocabulary and IDF from docs and returns their
// weighted matrix.
func (v *Vectorizer) FitTransform(docs []string) (*Matrix, error) {
	lower := cases.Lower(language.Und)
	counts := make([]map[string]int, len(docs))
	corpusCounts := map[string]int{}
	docFreq := map[string]int{}

	for i, doc := range docs {
		row := map[string]int{}
		for _, term := range v.analyze(lower, doc) {
			row[term]++
		}
		for term, count := range row {
			corpusCounts[term] += count
			docFreq[term]++
		}
		counts[i] = row
	}
	if len(corpusCounts) == 0 {
		return nil, ErrEmptyVocabulary
	}

	terms := v.vocabulary(corpusCounts)
	n := float64(len(docs))
	idf := make([]float64, len(terms))
	for idx, term := range terms {
		df := float64(docFreq[term])
		if v.SmoothIDF {
			idf[idx] = math.Log((1+n)/(1+df)) + 1
		} else {
			idf[idx] = math.Log(n/df) + 1
		}
	}

	rows := make([][]float64, len(docs))
	for i, row := range counts {
		weights := make([]float64, len(terms))
		for idx, term := range terms {
			count := row[term]
			if count == 0 {
				continue
			}
			tf := float64(count)
			if v.SublinearTF {
				tf = 1 + math.Log(tf)
			}
			weights[idx] = tf * idf[idx]
		}
		normalize(weights, v.Norm)
		rows[i] = weights
	}

	return &Matrix{Terms: terms, IDF: idf, Rows: rows}, nil
}

// Weights is FitTransform followed by column sums.
func (v *Vectorizer) Weights(docs []string) (map[string]float64, error) {
	matrix, err := v.FitTransform(docs)
	if err != nil {
		return nil, err
	}
	return matrix.Weights(), nil
}

func (v *Vectorizer) vocabulary(corpusCounts map[string]int) []string {
	terms := make([]string, 0, len(corpusCounts))
	for term := range corpusCounts {
		terms = append(terms, term)
	}

	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			ci, cj := corpusCounts[terms[i]], corpusCounts[terms[j]]
			if ci != cj {
				return ci > cj
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.MaxFeatures]
	}

	sort.Strings(terms)
	return terms
}

func normalize(weights []float64, norm Norm) {
	var total float64
	switch norm {
	case NormL1:
		for _, w := range weights {
			total += math.Abs(w)
		}
	case NormL2:
		for _, w := range weights {
			total += w * w
		}
		total = math.Sqrt(total)
	default:
		return
	}
	if total == 0 {
		return
	}
	for i := range weights {
		weights[i] /= total
	}
}

// TermWeight is one entry of a ranked term list.
type TermWeight struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// Top returns the n heaviest terms, heaviest first. n <= 0 returns all.
func Top(weights map[string]float64, n int) []TermWeight {
	ranked := make([]TermWeight, 0, len(weights))
	for term, weight := range weights {
		ranked = append(ranked, TermWeight{Term: term, Weight: weight})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Weight != ranked[j].Weight {
			return ranked[i].Weight > ranked[j].Weight
		}
		return ranked[i].Term < ranked[j].Term
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
