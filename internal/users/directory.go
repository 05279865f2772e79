// Package users exposes the public user directory search.
package users

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/circles/backend/internal/apperr"
	"github.com/circles/backend/internal/logging"
	"github.com/circles/backend/internal/models"
)

// PageSize is the number of users returned per search page.
const PageSize = 10

// Searcher runs the underlying keyword query.
type Searcher interface {
	Search(ctx context.Context, keyword string, limit, offset int) ([]models.User, error)
}

// Directory paginates keyword searches over registered users.
type Directory struct {
	searcher Searcher
}

// NewDirectory constructs a Directory over the given searcher.
func NewDirectory(searcher Searcher) *Directory {
	return &Directory{searcher: searcher}
}

// Page is a single page of search results.
type Page struct {
	Users []models.UserSummary `json:"users"`
	Page  int                  `json:"page"`
}

// ParsePage converts the raw page parameter into a 1-based page number.
// Missing, malformed and non-positive values all mean the first page.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Search returns the requested page of users matching keyword. A page past the
// last match is empty rather than an error.
func (d *Directory) Search(ctx context.Context, keyword string, page int) (Page, error) {
	ctx, span := logging.StartSpan(ctx, "users.search")
	defer span.End()

	if page < 1 {
		page = 1
	}

	result := Page{Users: []models.UserSummary{}, Page: page}

	offset := (page - 1) * PageSize
	if offset/PageSize != page-1 {
		return result, nil
	}

	found, err := d.searcher.Search(ctx, strings.TrimSpace(keyword), PageSize, offset)
	if err != nil {
		err = apperr.Storage(fmt.Errorf("search users: %w", err))
		span.Fail(err)
		return Page{}, err
	}

	for _, user := range found {
		result.Users = append(result.Users, user.Summary())
	}
	return result, nil
}
