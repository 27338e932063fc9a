package service

import (
	"finlit_backend/internal/model"
	"strings"
)

// GradeAnswer 判定单题对错，纯函数：同样的输入永远给同样的结果
//   - 选择/判断题：答案字符串与正确答案逐字节相等才算对（区分大小写）
//   - 简答题：双方都做 小写+去首尾空白 归一化后，命中任一可接受答案即算对，
//     空答案一律算错
//   - 未知题型一律算错
func GradeAnswer(q *model.LessonQuestion, userAnswer string) bool {
	switch q.QuestionType {
	case model.QuestionMultipleChoice, model.QuestionTrueFalse:
		correct, ok := decodeSingleAnswer(q.CorrectAnswer)
		if !ok {
			return false
		}
		return userAnswer == correct

	case model.QuestionFreeResponse:
		normalized := NormalizeAnswer(userAnswer)
		if normalized == "" {
			return false
		}
		for _, accepted := range decodeAcceptedAnswers(q.CorrectAnswer) {
			if NormalizeAnswer(accepted) == normalized {
				return true
			}
		}
		return false

	default:
		return false
	}
}

// NormalizeAnswer 简答题归一化：小写 + 去首尾空白
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
