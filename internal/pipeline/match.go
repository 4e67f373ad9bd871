package pipeline

import (
	"sort"

	"racebase/internal"
	"racebase/internal/config"
	"racebase/internal/util"
)

// Matcher resolves the horse names that charts and entry sheets carry to
// the registration numbers the card loader established. Exact lookups on
// the normalized name come first; a bigram-similarity pass over indexed
// candidates catches spelling drift between feeds.
type Matcher struct {
	cfg        config.Config
	refs       []internal.HorseRef
	normalized []string
	byName     map[string][]int
	tokenIndex map[string]map[int]struct{}
}

func NewMatcher(cfg config.Config, refs []internal.HorseRef) *Matcher {
	m := &Matcher{
		cfg:        cfg,
		refs:       refs,
		normalized: make([]string, len(refs)),
		byName:     map[string][]int{},
		tokenIndex: map[string]map[int]struct{}{},
	}
	for i, ref := range refs {
		name := util.NormalizeName(ref.Name)
		m.normalized[i] = name
		if name == "" {
			continue
		}
		m.byName[name] = append(m.byName[name], i)
		for _, token := range util.Tokenize(ref.Name) {
			if m.tokenIndex[token] == nil {
				m.tokenIndex[token] = map[int]struct{}{}
			}
			m.tokenIndex[token][i] = struct{}{}
		}
	}
	// Horses sharing a name resolve to the most recent foaling.
	for _, ids := range m.byName {
		sort.Slice(ids, func(a, b int) bool {
			ya, yb := yearOf(m.refs[ids[a]]), yearOf(m.refs[ids[b]])
			if ya != yb {
				return ya > yb
			}
			return ids[a] < ids[b]
		})
	}
	return m
}

func (m *Matcher) Match(name string) (string, internal.MatchReason) {
	query := util.NormalizeName(name)
	if query == "" {
		return "", internal.MatchNone
	}

	if ids := m.byName[query]; len(ids) > 0 {
		return m.refs[ids[0]].RegistrationNumber, internal.MatchExact
	}

	candidates := m.rankCandidates(query)
	if len(candidates) == 0 || candidates[0].score < m.cfg.MatchFuzzyThreshold {
		return "", internal.MatchNone
	}
	return m.refs[candidates[0].id].RegistrationNumber, internal.MatchFuzzy
}

type nameCandidate struct {
	id    int
	score float64
}

func (m *Matcher) rankCandidates(query string) []nameCandidate {
	queryTokens := util.Tokenize(query)
	ids := map[int]struct{}{}
	for _, token := range queryTokens {
		for id := range m.tokenIndex[token] {
			ids[id] = struct{}{}
		}
	}
	if len(ids) == 0 {
		for i := range m.refs {
			ids[i] = struct{}{}
			if len(ids) >= 1500 {
				break
			}
		}
	}

	out := make([]nameCandidate, 0, len(ids))
	for id := range ids {
		if m.normalized[id] == "" {
			continue
		}
		out = append(out, nameCandidate{id: id, score: util.DiceCoefficient(query, m.normalized[id])})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		yi, yj := yearOf(m.refs[out[i].id]), yearOf(m.refs[out[j].id])
		if yi != yj {
			return yi > yj
		}
		return out[i].id < out[j].id
	})
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

func yearOf(ref internal.HorseRef) int {
	if ref.YearOfBirth == nil {
		return -1
	}
	return *ref.YearOfBirth
}
