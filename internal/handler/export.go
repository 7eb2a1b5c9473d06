package handler

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/service/quizplayer"
)

var exportHeaders = []string{
	"Utilisateur", "Score", "Score max", "Pourcentage", "Réussi",
	"Bonnes réponses", "Questions", "Durée", "À corriger", "Terminé le",
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// exportFilename строит имя файла выгрузки без расширения
func exportFilename(quiz *entity.Quiz) string {
	slug := strings.Trim(unsafeFilenameChars.ReplaceAllString(strings.ToLower(quiz.Title), "_"), "_")
	if slug == "" {
		slug = "quiz"
	}
	return fmt.Sprintf("%s_%d_resultats_%s", slug, quiz.ID, time.Now().Format("2006-01-02"))
}

func yesNo(v bool) string {
	if v {
		return "Oui"
	}
	return "Non"
}

func attemptUsername(a *entity.Attempt) string {
	if a.User == nil {
		return fmt.Sprintf("#%d", a.UserID)
	}
	if a.User.FullName != "" {
		return a.User.FullName
	}
	return a.User.Username
}

func formatCompletedAt(a *entity.Attempt) string {
	if a.CompletedAt == nil {
		return ""
	}
	return a.CompletedAt.Format("2006-01-02 15:04")
}

// exportCSV экспортирует результаты в CSV с правильным экранированием спецсимволов
func exportCSV(c *gin.Context, results []entity.Attempt, quiz *entity.Quiz, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))
	c.Status(http.StatusOK)

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for i := range results {
		r := &results[i]
		writer.Write([]string{
			sanitizeForExcel(attemptUsername(r)),
			strconv.Itoa(r.Score),
			strconv.Itoa(r.MaxScore),
			strconv.Itoa(r.Percentage) + "%",
			yesNo(r.Passed),
			strconv.Itoa(r.CorrectAnswers),
			strconv.Itoa(r.TotalQuestions),
			formatDuration(r.DurationSeconds),
			yesNo(r.NeedsReview()),
			formatCompletedAt(r),
		})
	}
	log.Printf("[QuizHandler] Выгружено %d результатов викторины %d в CSV", len(results), quiz.ID)
}

// exportXLSX экспортирует результаты в Excel с использованием StreamWriter
func exportXLSX(c *gin.Context, results []entity.Attempt, quiz *entity.Quiz, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Résultats"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[QuizHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := make([]interface{}, len(exportHeaders))
	for i, h := range exportHeaders {
		headers[i] = h
	}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[QuizHandler] Ошибка записи заголовков: %v", err)
	}

	for i := range results {
		r := &results[i]
		rowNum := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		row := []interface{}{
			sanitizeForExcel(attemptUsername(r)),
			r.Score,
			r.MaxScore,
			r.Percentage,
			yesNo(r.Passed),
			r.CorrectAnswers,
			r.TotalQuestions,
			formatDuration(r.DurationSeconds),
			yesNo(r.NeedsReview()),
			formatCompletedAt(r),
		}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[QuizHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[QuizHandler] Ошибка при Flush: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[QuizHandler] Ошибка записи Excel в response: %v", err)
	}
}

func formatDuration(seconds int) string {
	return quizplayer.FormatElapsed(time.Duration(seconds) * time.Second)
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
