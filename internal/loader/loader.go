// Package loader seeds the database from the bundled CSV fixtures. It
// runs from the CLI, never on the request path, and loads everything in
// one transaction so a malformed file leaves the store untouched.
package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"yamdb/internal/httpapi/models"

	"gorm.io/gorm"
)

type Loader struct {
	db     *gorm.DB
	logger *slog.Logger
}

func New(db *gorm.DB, logger *slog.Logger) *Loader {
	return &Loader{db: db, logger: logger}
}

// record is one CSV row with header-based field access.
type record struct {
	fields map[string]string
	line   int
}

func (r record) get(col string) string {
	return r.fields[col]
}

func (r record) getInt(col string) (int64, error) {
	v, err := strconv.ParseInt(r.fields[col], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: column %q: %w", r.line, col, err)
	}
	return v, nil
}

// readCSV parses a headered CSV file into records.
func readCSV(path string) ([]record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		fields := make(map[string]string, len(header))
		for j, col := range header {
			if j < len(row) {
				fields[col] = row[j]
			}
		}
		records = append(records, record{fields: fields, line: i + 2})
	}
	return records, nil
}

// timestamp layouts seen in the fixture exports
var pubDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02T15:04:05.999Z",
}

func parsePubDate(value string) time.Time {
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Load seeds all seven fixture files from dir in dependency order.
// Fixture user ids are integers while the store keys users by uuid, so
// the id mapping is carried through to review and comment authors.
func (l *Loader) Load(ctx context.Context, dir string) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userIDs, err := l.loadUsers(tx, filepath.Join(dir, "users.csv"))
		if err != nil {
			return fmt.Errorf("users: %w", err)
		}
		if err := l.loadCategories(tx, filepath.Join(dir, "category.csv")); err != nil {
			return fmt.Errorf("categories: %w", err)
		}
		if err := l.loadGenres(tx, filepath.Join(dir, "genre.csv")); err != nil {
			return fmt.Errorf("genres: %w", err)
		}
		if err := l.loadTitles(tx, filepath.Join(dir, "titles.csv")); err != nil {
			return fmt.Errorf("titles: %w", err)
		}
		if err := l.loadGenreTitles(tx, filepath.Join(dir, "genre_title.csv")); err != nil {
			return fmt.Errorf("genre links: %w", err)
		}
		if err := l.loadReviews(tx, filepath.Join(dir, "review.csv"), userIDs); err != nil {
			return fmt.Errorf("reviews: %w", err)
		}
		if err := l.loadComments(tx, filepath.Join(dir, "comments.csv"), userIDs); err != nil {
			return fmt.Errorf("comments: %w", err)
		}
		return nil
	})
}

func (l *Loader) loadUsers(tx *gorm.DB, path string) (map[int64]string, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	ids := make(map[int64]string, len(records))
	for _, r := range records {
		fixtureID, err := r.getInt("id")
		if err != nil {
			return nil, err
		}
		user := models.User{
			Username:  r.get("username"),
			Email:     r.get("email"),
			Role:      r.get("role"),
			Bio:       r.get("bio"),
			FirstName: r.get("first_name"),
			LastName:  r.get("last_name"),
		}
		if user.Role == "" {
			user.Role = models.RoleUser
		}
		if err := tx.Create(&user).Error; err != nil {
			return nil, err
		}
		ids[fixtureID] = user.ID
	}
	l.logger.Info("loaded users", "count", len(records))
	return ids, nil
}

func (l *Loader) loadCategories(tx *gorm.DB, path string) error {
	records, err := readCSV(path)
	if err != nil {
		return err
	}
	for _, r := range records {
		id, err := r.getInt("id")
		if err != nil {
			return err
		}
		category := models.Category{ID: id, Name: r.get("name"), Slug: r.get("slug")}
		if err := tx.Create(&category).Error; err != nil {
			return err
		}
	}
	l.logger.Info("loaded categories", "count", len(records))
	return nil
}

func (l *Loader) loadGenres(tx *gorm.DB, path string) error {
	records, err := readCSV(path)
	if err != nil {
		return err
	}
	for _, r := range records {
		id, err := r.getInt("id")
		if err != nil {
			return err
		}
		genre := models.Genre{ID: id, Name: r.get("name"), Slug: r.get("slug")}
		if err := tx.Create(&genre).Error; err != nil {
			return err
		}
	}
	l.logger.Info("loaded genres", "count", len(records))
	return nil
}

func (l *Loader) loadTitles(tx *gorm.DB, path string) error {
	records, err := readCSV(path)
	if err != nil {
		return err
	}
	for _, r := range records {
		id, err := r.getInt("id")
		if err != nil {
			return err
		}
		year, err := r.getInt("year")
		if err != nil {
			return err
		}
		title := models.Title{ID: id, Name: r.get("name"), Year: int(year)}
		if v := r.get("category"); v != "" {
			categoryID, err := r.getInt("category")
			if err != nil {
				return err
			}
			title.CategoryID = &categoryID
		}
		if err := tx.Create(&title).Error; err != nil {
			return err
		}
	}
	l.logger.Info("loaded titles", "count", len(records))
	return nil
}

func (l *Loader) loadGenreTitles(tx *gorm.DB, path string) error {
	records, err := readCSV(path)
	if err != nil {
		return err
	}
	for _, r := range records {
		titleID, err := r.getInt("title_id")
		if err != nil {
			return err
		}
		genreID, err := r.getInt("genre_id")
		if err != nil {
			return err
		}
		link := models.GenreTitle{TitleID: titleID, GenreID: genreID}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
	}
	l.logger.Info("loaded genre links", "count", len(records))
	return nil
}

func (l *Loader) loadReviews(tx *gorm.DB, path string, userIDs map[int64]string) error {
	records, err := readCSV(path)
	if err != nil {
		return err
	}
	for _, r := range records {
		id, err := r.getInt("id")
		if err != nil {
			return err
		}
		titleID, err := r.getInt("title_id")
		if err != nil {
			return err
		}
		fixtureAuthor, err := r.getInt("author")
		if err != nil {
			return err
		}
		authorID, ok := userIDs[fixtureAuthor]
		if !ok {
			return fmt.Errorf("line %d: unknown author id %d", r.line, fixtureAuthor)
		}
		score, err := r.getInt("score")
		if err != nil {
			return err
		}
		review := models.Review{
			ID:        id,
			TitleID:   titleID,
			AuthorID:  authorID,
			Text:      r.get("text"),
			Score:     int(score),
			CreatedAt: parsePubDate(r.get("pub_date")),
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
	}
	l.logger.Info("loaded reviews", "count", len(records))
	return nil
}

func (l *Loader) loadComments(tx *gorm.DB, path string, userIDs map[int64]string) error {
	records, err := readCSV(path)
	if err != nil {
		return err
	}
	for _, r := range records {
		id, err := r.getInt("id")
		if err != nil {
			return err
		}
		reviewID, err := r.getInt("review_id")
		if err != nil {
			return err
		}
		fixtureAuthor, err := r.getInt("author")
		if err != nil {
			return err
		}
		authorID, ok := userIDs[fixtureAuthor]
		if !ok {
			return fmt.Errorf("line %d: unknown author id %d", r.line, fixtureAuthor)
		}
		comment := models.Comment{
			ID:        id,
			ReviewID:  reviewID,
			AuthorID:  authorID,
			Text:      r.get("text"),
			CreatedAt: parsePubDate(r.get("pub_date")),
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
	}
	l.logger.Info("loaded comments", "count", len(records))
	return nil
}
