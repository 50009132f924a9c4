package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redisplay/simple-gallery/internal/models"
	"github.com/redisplay/simple-gallery/internal/tags"
)

var (
	ErrPictureNotFound   = errors.New("picture not found")
	ErrDuplicateFilename = errors.New("duplicate filename")
)

// PictureRepository owns picture rows and their tag associations for one
// gallery. All enumeration is in ascending id order; ids are assigned by
// AUTOINCREMENT and never reused, so an existing picture's ordinal can only
// change when a lower-id picture is deleted.
type PictureRepository struct {
	db *sql.DB
}

func NewPictureRepository(db *sql.DB) *PictureRepository {
	return &PictureRepository{db: db}
}

const pictureColumns = "id, filename, description, taken_on, location, created_at"

func scanPicture(row interface{ Scan(...any) error }) (models.Picture, error) {
	var (
		p         models.Picture
		takenOn   sql.NullString
		location  sql.NullString
		createdAt int64
	)
	if err := row.Scan(&p.ID, &p.Filename, &p.Description, &takenOn, &location, &createdAt); err != nil {
		return models.Picture{}, err
	}
	if takenOn.Valid {
		p.TakenOn = &takenOn.String
	}
	if location.Valid {
		p.Location = &location.String
	}
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	return p, nil
}

// List returns pictures in ascending id order, restricted to the given tag
// when tag is non-empty. limit <= 0 means no limit; offset applies after
// filtering.
func (r *PictureRepository) List(ctx context.Context, tag string, limit, offset int) ([]models.Picture, error) {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}

	var (
		rows *sql.Rows
		err  error
	)
	if tag == "" {
		query := fmt.Sprintf("SELECT %s FROM pictures ORDER BY id LIMIT ? OFFSET ?", pictureColumns)
		rows, err = r.db.QueryContext(ctx, query, limit, offset)
	} else {
		query := `
			SELECT p.id, p.filename, p.description, p.taken_on, p.location, p.created_at
			FROM pictures p
			JOIN picture_tags pt ON pt.picture_id = p.id
			JOIN tags t ON t.id = pt.tag_id
			WHERE t.name = ?
			ORDER BY p.id LIMIT ? OFFSET ?`
		rows, err = r.db.QueryContext(ctx, query, tag, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pictures []models.Picture
	for rows.Next() {
		p, err := scanPicture(rows)
		if err != nil {
			return nil, err
		}
		pictures = append(pictures, p)
	}
	return pictures, rows.Err()
}

// Count returns the unpaginated total with the same filter semantics as List.
func (r *PictureRepository) Count(ctx context.Context, tag string) (int, error) {
	var (
		n   int
		err error
	)
	if tag == "" {
		err = r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pictures").Scan(&n)
	} else {
		err = r.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM pictures p
			JOIN picture_tags pt ON pt.picture_id = p.id
			JOIN tags t ON t.id = pt.tag_id
			WHERE t.name = ?`, tag).Scan(&n)
	}
	return n, err
}

func (r *PictureRepository) GetByID(ctx context.Context, id int64) (models.Picture, error) {
	query := fmt.Sprintf("SELECT %s FROM pictures WHERE id = ?", pictureColumns)
	p, err := scanPicture(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Picture{}, ErrPictureNotFound
	}
	return p, err
}

// GetByOrdinal returns the picture at the zero-based position index in
// ascending id order.
func (r *PictureRepository) GetByOrdinal(ctx context.Context, index int) (models.Picture, error) {
	if index < 0 {
		return models.Picture{}, ErrPictureNotFound
	}
	query := fmt.Sprintf("SELECT %s FROM pictures ORDER BY id LIMIT 1 OFFSET ?", pictureColumns)
	p, err := scanPicture(r.db.QueryRowContext(ctx, query, index))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Picture{}, ErrPictureNotFound
	}
	return p, err
}

// AllIDs returns every picture id in ascending order; this is the universe a
// shuffle permutation is built from.
func (r *PictureRepository) AllIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id FROM pictures ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PictureRepository) Insert(ctx context.Context, filename string, takenOn, location *string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO pictures (filename, description, taken_on, location, created_at) VALUES (?, '', ?, ?, ?)",
		filename, takenOn, location, time.Now().Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateFilename
		}
		return 0, err
	}
	return res.LastInsertId()
}

// Delete removes the picture and, through the foreign keys, its tag
// associations, returning the removed record. Removing the backing file is
// the caller's job and is allowed to fail without undoing this.
func (r *PictureRepository) Delete(ctx context.Context, id int64) (models.Picture, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Picture{}, err
	}
	defer tx.Rollback()

	query := fmt.Sprintf("SELECT %s FROM pictures WHERE id = ?", pictureColumns)
	p, err := scanPicture(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Picture{}, ErrPictureNotFound
	}
	if err != nil {
		return models.Picture{}, err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM pictures WHERE id = ?", id); err != nil {
		return models.Picture{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Picture{}, err
	}
	return p, nil
}

func (r *PictureRepository) UpdateDescription(ctx context.Context, id int64, text string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE pictures SET description = ? WHERE id = ?", text, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateDateLocation overwrites both optional fields; a nil value clears.
func (r *PictureRepository) UpdateDateLocation(ctx context.Context, id int64, takenOn, location *string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE pictures SET taken_on = ?, location = ? WHERE id = ?", takenOn, location, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetTags replaces the picture's full tag set. Names are normalized first;
// names that normalize to nothing are dropped, duplicates collapse, missing
// tag rows are created, and the association swap happens in one transaction.
func (r *PictureRepository) SetTags(ctx context.Context, id int64, names []string) error {
	slugs := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		slug := tags.Normalize(name)
		if slug == "" {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		slugs = append(slugs, slug)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int64
	err = tx.QueryRowContext(ctx, "SELECT id FROM pictures WHERE id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPictureNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM picture_tags WHERE picture_id = ?", id); err != nil {
		return err
	}

	for _, slug := range slugs {
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO tags (name) VALUES (?)", slug); err != nil {
			return err
		}
		var tagID int64
		if err := tx.QueryRowContext(ctx, "SELECT id FROM tags WHERE name = ?", slug).Scan(&tagID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO picture_tags (picture_id, tag_id) VALUES (?, ?)", id, tagID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// TagsOf returns the picture's tag names alphabetically.
func (r *PictureRepository) TagsOf(ctx context.Context, id int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.name FROM tags t
		JOIN picture_tags pt ON pt.tag_id = t.id
		WHERE pt.picture_id = ?
		ORDER BY t.name`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0, 4)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// TagsWithCounts lists every tag alphabetically with its number of
// associated pictures. Tags that lost all their pictures stay listed with a
// zero count; they are never garbage-collected automatically.
func (r *PictureRepository) TagsWithCounts(ctx context.Context) ([]models.TagCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.name, COUNT(pt.picture_id) FROM tags t
		LEFT JOIN picture_tags pt ON pt.tag_id = t.id
		GROUP BY t.id
		ORDER BY t.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.TagCount
	for rows.Next() {
		var tc models.TagCount
		if err := rows.Scan(&tc.Name, &tc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, tc)
	}
	return counts, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPictureNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
