package service

import "fmt"

func quizStructureKey(quizID uint) string {
	return fmt.Sprintf("quiz:structure:%d", quizID)
}

func courseStructureKey(courseID uint) string {
	return fmt.Sprintf("course:structure:%d", courseID)
}

func quizDraftKey(userID uint) string {
	return fmt.Sprintf("quiz:draft:%d", userID)
}

func leaderboardKey(courseID uint, period string, limit int) string {
	return fmt.Sprintf("leaderboard:%s:%d:%d", period, courseID, limit)
}
