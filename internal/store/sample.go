package store

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/google/uuid"

	"github.com/ayusman/shifumi/internal/gesture"
)

// Sample is a labelled hand crop saved for training.
type Sample struct {
	ID        string       `json:"id"`
	Gesture   gesture.Move `json:"gesture"`
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	CreatedAt time.Time    `json:"created_at"`
	// Image holds the WebP bytes. It is only populated by Get.
	Image []byte `json:"-"`
}

// SampleRepository provides CRUD operations for samples.
type SampleRepository struct {
	db *sql.DB
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{db: s.db}
}

// Create encodes img as lossless WebP and stores it under the given label.
func (r *SampleRepository) Create(label gesture.Move, img image.Image) (*Sample, error) {
	if !label.Valid() {
		return nil, fmt.Errorf("invalid gesture %q", label)
	}
	if img == nil || img.Bounds().Empty() {
		return nil, errors.New("empty image")
	}

	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, img, nil); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}

	b := img.Bounds()
	sample := &Sample{
		ID:        uuid.NewString(),
		Gesture:   label,
		Width:     b.Dx(),
		Height:    b.Dy(),
		CreatedAt: time.Now().UTC(),
		Image:     buf.Bytes(),
	}

	_, err := r.db.Exec(
		`INSERT INTO samples (id, gesture, image, width, height, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sample.ID, string(sample.Gesture), sample.Image, sample.Width, sample.Height, sample.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return sample, nil
}

// Get retrieves a sample including its image bytes.
func (r *SampleRepository) Get(id string) (*Sample, error) {
	var (
		s     Sample
		label string
	)
	err := r.db.QueryRow(
		`SELECT id, gesture, image, width, height, created_at FROM samples WHERE id = ?`, id,
	).Scan(&s.ID, &label, &s.Image, &s.Width, &s.Height, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Gesture = gesture.Move(label)
	return &s, nil
}

// List returns sample metadata for one gesture, newest first. An empty label
// lists every gesture.
func (r *SampleRepository) List(label gesture.Move, limit int) ([]Sample, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, gesture, width, height, created_at FROM samples`
	args := []any{}
	if label != gesture.NoMove {
		query += ` WHERE gesture = ?`
		args = append(args, string(label))
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	samples := []Sample{}
	for rows.Next() {
		var (
			s     Sample
			label string
		)
		if err := rows.Scan(&s.ID, &label, &s.Width, &s.Height, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Gesture = gesture.Move(label)
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// Counts returns the number of samples per gesture. Every gesture is present,
// with zero when nothing was collected.
func (r *SampleRepository) Counts() (map[gesture.Move]int, error) {
	counts := make(map[gesture.Move]int, len(gesture.Moves))
	for _, m := range gesture.Moves {
		counts[m] = 0
	}

	rows, err := r.db.Query(`SELECT gesture, COUNT(*) FROM samples GROUP BY gesture`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			label string
			n     int
		)
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[gesture.Move(label)] = n
	}
	return counts, rows.Err()
}

// Delete removes a sample.
func (r *SampleRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM samples WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
