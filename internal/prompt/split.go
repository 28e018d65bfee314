package prompt

import "study-byte/internal/domain"

// KindCount is the number of questions requested for one kind
type KindCount struct {
	Kind  domain.QuestionKind
	Count int
}

// SplitQuestionCount spreads total over the four question kinds. Each kind
// gets total/4 and the remainder goes one each to the earliest kinds in
// domain.QuestionKinds order, so 10 splits 3,3,2,2. Kinds left at zero are omitted.
func SplitQuestionCount(total int) []KindCount {
	if total <= 0 {
		return nil
	}
	base, remainder := total/len(domain.QuestionKinds), total%len(domain.QuestionKinds)

	split := make([]KindCount, 0, len(domain.QuestionKinds))
	for i, kind := range domain.QuestionKinds {
		n := base
		if i < remainder {
			n++
		}
		if n == 0 {
			continue
		}
		split = append(split, KindCount{Kind: kind, Count: n})
	}
	return split
}
