package journey

// ScoreQuiz converts the level tags of the chosen quiz options into a level.
// Tags are weighted beginner=1, intermediate=2, advanced=3 and averaged:
// below 1.5 is beginner, above 2.5 is advanced, and the closed range
// [1.5, 2.5] is intermediate. Unknown tags are skipped. An empty quiz
// scores as beginner.
func ScoreQuiz(answers []Level) Level {
	var sum, n int
	for _, a := range answers {
		w := a.Weight()
		if w == 0 {
			continue
		}
		sum += w
		n++
	}
	if n == 0 {
		return LevelBeginner
	}

	mean := float64(sum) / float64(n)
	switch {
	case mean < 1.5:
		return LevelBeginner
	case mean > 2.5:
		return LevelAdvanced
	default:
		return LevelIntermediate
	}
}
