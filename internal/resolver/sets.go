package resolver

// AnswerSet is the set of configuration answer IDs submitted for a study.
type AnswerSet map[string]struct{}

// NewAnswerSet builds an AnswerSet from IDs, ignoring empty strings.
func NewAnswerSet(ids ...string) AnswerSet {
	s := make(AnswerSet, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

// Has reports whether id was answered.
func (s AnswerSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// QuestionSet is an unordered set of question IDs.
type QuestionSet map[string]struct{}

func (s QuestionSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s QuestionSet) add(ids []string) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

func (s QuestionSet) remove(ids []string) {
	for _, id := range ids {
		delete(s, id)
	}
}

func (s QuestionSet) clone() QuestionSet {
	c := make(QuestionSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}
