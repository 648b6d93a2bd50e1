package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/bpadilla17/radladder-game/internal/dto"
	"github.com/bpadilla17/radladder-game/internal/models"
	"github.com/bpadilla17/radladder-game/internal/repository"

	"github.com/gin-gonic/gin"
)

const maxImageSize = 5 << 20

type QuestionStore interface {
	ListQuestions(ctx context.Context, rung int) ([]*models.Question, error)
	GetQuestion(ctx context.Context, id string) (*models.Question, error)
	CreateQuestion(ctx context.Context, q *models.Question) error
	AddQuestionImage(ctx context.Context, id, ref string) (*models.Question, error)
}

type ImageUploader interface {
	UploadQuestionImage(ctx context.Context, questionID, filename string, reader io.Reader, size int64, contentType string) (string, error)
	DeleteFile(ctx context.Context, objectName string) error
}

// QuestionHandler serves the question admin API. Image uploads are refused
// when no uploader is configured.
type QuestionHandler struct {
	store    QuestionStore
	uploader ImageUploader
}

func NewQuestionHandler(store QuestionStore, uploader ImageUploader) *QuestionHandler {
	return &QuestionHandler{
		store:    store,
		uploader: uploader,
	}
}

func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	rung := 0
	if v := c.Query("rung"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 10 {
			dto.JsonError(c, http.StatusBadRequest, "rung must be between 1 and 10")
			return
		}
		rung = n
	}

	questions, err := h.store.ListQuestions(c.Request.Context(), rung)
	if err != nil {
		log.Printf("Failed to list questions: %v", err)
		dto.JsonError(c, http.StatusInternalServerError, "Failed to list questions")
		return
	}
	if questions == nil {
		questions = []*models.Question{}
	}

	c.JSON(http.StatusOK, dto.QuestionsResponse{
		Questions: questions,
		Total:     len(questions),
	})
}

func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	q, err := h.store.GetQuestion(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeQuestionError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.QuestionResponse{Question: q})
}

func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req dto.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.JsonError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	q := req.ToModel()
	if err := h.store.CreateQuestion(c.Request.Context(), q); err != nil {
		writeQuestionError(c, err)
		return
	}

	log.Printf("Question created: id=%s, rung=%d", q.ID, q.Rung)
	c.JSON(http.StatusCreated, dto.QuestionResponse{Question: q})
}

func (h *QuestionHandler) UploadImage(c *gin.Context) {
	if h.uploader == nil {
		dto.JsonError(c, http.StatusServiceUnavailable, "Image storage is not configured")
		return
	}

	questionID := c.Param("id")
	if _, err := h.store.GetQuestion(c.Request.Context(), questionID); err != nil {
		writeQuestionError(c, err)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		dto.JsonError(c, http.StatusBadRequest, "image file is required")
		return
	}
	if file.Size > maxImageSize {
		dto.JsonError(c, http.StatusRequestEntityTooLarge, "image must be 5MB or smaller")
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		dto.JsonError(c, http.StatusBadRequest, "file must be an image")
		return
	}

	src, err := file.Open()
	if err != nil {
		dto.JsonError(c, http.StatusBadRequest, "Failed to read image")
		return
	}
	defer src.Close()

	objectName, err := h.uploader.UploadQuestionImage(c.Request.Context(), questionID, file.Filename, src, file.Size, contentType)
	if err != nil {
		log.Printf("Failed to upload image for question %s: %v", questionID, err)
		dto.JsonError(c, http.StatusBadGateway, "Failed to store image")
		return
	}

	q, err := h.store.AddQuestionImage(c.Request.Context(), questionID, objectName)
	if err != nil {
		if delErr := h.uploader.DeleteFile(c.Request.Context(), objectName); delErr != nil {
			log.Printf("Failed to remove orphaned image %s: %v", objectName, delErr)
		}
		writeQuestionError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.QuestionResponse{Question: q})
}

func writeQuestionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrQuestionNotFound):
		dto.JsonError(c, http.StatusNotFound, "Question not found")
	case errors.Is(err, repository.ErrInvalidQuestion):
		dto.JsonError(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("Question request failed: %v", err)
		dto.JsonError(c, http.StatusInternalServerError)
	}
}
