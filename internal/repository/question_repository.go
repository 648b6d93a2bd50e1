package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bpadilla17/radladder-game/internal/constants"
	"github.com/bpadilla17/radladder-game/internal/models"
	"github.com/bpadilla17/radladder-game/pkg/database"

	"github.com/google/uuid"
)

const questionColumns = `id, rung, scenario, option_a, option_b, option_c, option_d, correct_option, teaching_point, image_refs`

type QuestionRepository struct {
	db *database.Client
}

func NewQuestionRepository(db *database.Client) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func (r *QuestionRepository) QuestionsForRung(ctx context.Context, rung int) ([]*models.Question, error) {
	query := r.db.Rebind(`SELECT ` + questionColumns + ` FROM questions WHERE rung = ? ORDER BY id`)
	return r.queryQuestions(ctx, query, rung)
}

// ListQuestions returns every question, or only those on rung when rung > 0.
func (r *QuestionRepository) ListQuestions(ctx context.Context, rung int) ([]*models.Question, error) {
	if rung > 0 {
		return r.QuestionsForRung(ctx, rung)
	}
	return r.queryQuestions(ctx, `SELECT `+questionColumns+` FROM questions ORDER BY rung, id`)
}

func (r *QuestionRepository) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	query := r.db.Rebind(`SELECT ` + questionColumns + ` FROM questions WHERE id = ?`)
	q, err := scanQuestion(r.db.GetDB().QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question %s: %w", id, err)
	}
	return q, nil
}

// CreateQuestion validates and inserts q. An empty id is replaced with a new
// UUID.
func (r *QuestionRepository) CreateQuestion(ctx context.Context, q *models.Question) error {
	if err := ValidateQuestion(q); err != nil {
		return err
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}

	query := r.db.Rebind(`
		INSERT INTO questions (` + questionColumns + `, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	args, err := questionArgs(q, time.Now().UTC())
	if err != nil {
		return err
	}
	if _, err := r.db.GetDB().ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

// ImportQuestions inserts questions that do not exist yet and returns how
// many were added.
func (r *QuestionRepository) ImportQuestions(ctx context.Context, questions []*models.Question) (int, error) {
	tx, err := r.db.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	query := r.db.Rebind(`
		INSERT INTO questions (` + questionColumns + `, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`)

	now := time.Now().UTC()
	added := 0
	for _, q := range questions {
		if err := ValidateQuestion(q); err != nil {
			return 0, fmt.Errorf("question %q: %w", q.ID, err)
		}
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		args, err := questionArgs(q, now)
		if err != nil {
			return 0, err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to import question %s: %w", q.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return added, nil
}

// AddQuestionImage appends ref to the question's image list. The read and
// the write share a transaction so concurrent uploads do not drop refs.
func (r *QuestionRepository) AddQuestionImage(ctx context.Context, id, ref string) (*models.Question, error) {
	tx, err := r.db.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin image update: %w", err)
	}
	defer tx.Rollback()

	selectQuery := `SELECT ` + questionColumns + ` FROM questions WHERE id = ?`
	if r.db.Driver() == database.DriverPostgres {
		selectQuery += ` FOR UPDATE`
	}
	q, err := scanQuestion(tx.QueryRowContext(ctx, r.db.Rebind(selectQuery), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question %s: %w", id, err)
	}
	q.ImageRefs = append(q.ImageRefs, ref)

	refs, err := encodeImageRefs(q.ImageRefs)
	if err != nil {
		return nil, err
	}
	updateQuery := r.db.Rebind(`UPDATE questions SET image_refs = ? WHERE id = ?`)
	if _, err := tx.ExecContext(ctx, updateQuery, refs, id); err != nil {
		return nil, fmt.Errorf("failed to add image to question %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit image update: %w", err)
	}
	return q, nil
}

// ValidateQuestion checks the rung range, option labels and correct option.
func ValidateQuestion(q *models.Question) error {
	if q == nil {
		return fmt.Errorf("%w: missing question", ErrInvalidQuestion)
	}
	if q.Rung < constants.MinRung || q.Rung > constants.MaxRung {
		return fmt.Errorf("%w: rung %d out of range", ErrInvalidQuestion, q.Rung)
	}
	if strings.TrimSpace(q.Scenario) == "" {
		return fmt.Errorf("%w: scenario is required", ErrInvalidQuestion)
	}
	if len(q.Options) < 2 || len(q.Options) > len(constants.OptionLabels) {
		return fmt.Errorf("%w: expected 2 to 4 options, got %d", ErrInvalidQuestion, len(q.Options))
	}

	seen := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		if !slices.Contains(constants.OptionLabels, o.Label) {
			return fmt.Errorf("%w: unknown option label %q", ErrInvalidQuestion, o.Label)
		}
		if seen[o.Label] {
			return fmt.Errorf("%w: duplicate option label %q", ErrInvalidQuestion, o.Label)
		}
		if strings.TrimSpace(o.Text) == "" {
			return fmt.Errorf("%w: option %s has no text", ErrInvalidQuestion, o.Label)
		}
		seen[o.Label] = true
	}
	if !seen[q.CorrectOption] {
		return fmt.Errorf("%w: correct option %q is not one of the options", ErrInvalidQuestion, q.CorrectOption)
	}
	return nil
}

func (r *QuestionRepository) queryQuestions(ctx context.Context, query string, args ...any) ([]*models.Question, error) {
	rows, err := r.db.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	var questions []*models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (*models.Question, error) {
	var (
		q         models.Question
		texts     [4]string
		imageRefs string
	)
	err := row.Scan(
		&q.ID,
		&q.Rung,
		&q.Scenario,
		&texts[0],
		&texts[1],
		&texts[2],
		&texts[3],
		&q.CorrectOption,
		&q.TeachingPoint,
		&imageRefs,
	)
	if err != nil {
		return nil, err
	}

	for i, text := range texts {
		if text != "" {
			q.Options = append(q.Options, models.Option{Label: constants.OptionLabels[i], Text: text})
		}
	}
	q.CorrectOption = strings.TrimSpace(q.CorrectOption)
	if q.ImageRefs, err = decodeImageRefs(imageRefs); err != nil {
		return nil, fmt.Errorf("question %s: %w", q.ID, err)
	}
	return &q, nil
}

func questionArgs(q *models.Question, createdAt time.Time) ([]any, error) {
	refs, err := encodeImageRefs(q.ImageRefs)
	if err != nil {
		return nil, err
	}
	var texts [4]string
	for _, o := range q.Options {
		texts[slices.Index(constants.OptionLabels, o.Label)] = o.Text
	}
	return []any{
		q.ID,
		q.Rung,
		q.Scenario,
		texts[0],
		texts[1],
		texts[2],
		texts[3],
		q.CorrectOption,
		q.TeachingPoint,
		refs,
		createdAt,
	}, nil
}

// Image refs are stored as a JSON array of strings.
func encodeImageRefs(refs []string) (string, error) {
	if len(refs) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(refs)
	if err != nil {
		return "", fmt.Errorf("failed to encode image refs: %w", err)
	}
	return string(data), nil
}

func decodeImageRefs(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var refs []string
	if err := json.Unmarshal([]byte(s), &refs); err != nil {
		return nil, fmt.Errorf("failed to decode image refs: %w", err)
	}
	if len(refs) == 0 {
		return nil, nil
	}
	return refs, nil
}
