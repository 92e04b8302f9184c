package mailinglist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ets-berkeley-edu/ripley/internal/berkeley"
	"github.com/ets-berkeley-edu/ripley/internal/types"
)

// ErrAlreadyExists marks an attempt to create a second list for a course site.
var ErrAlreadyExists = errors.New("mailinglist: list already exists")

// MailingList is one stored list record.
type MailingList struct {
	ID                   int64   `db:"id" json:"id"`
	CanvasSiteID         int     `db:"canvas_site_id" json:"canvasSiteId"`
	CanvasSiteName       *string `db:"canvas_site_name" json:"canvasSiteName"`
	ListName             *string `db:"list_name" json:"listName"`
	MembersCount         *int    `db:"members_count" json:"membersCount"`
	PopulateAddErrors    *int    `db:"populate_add_errors" json:"populateAddErrors"`
	PopulateRemoveErrors *int    `db:"populate_remove_errors" json:"populateRemoveErrors"`
	WelcomeEmailActive   bool    `db:"welcome_email_active" json:"welcomeEmailActive"`
	WelcomeEmailBody     *string `db:"welcome_email_body" json:"welcomeEmailBody"`
	WelcomeEmailSubject  *string `db:"welcome_email_subject" json:"welcomeEmailSubject"`
}

// Store persists mailing lists in the app database.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps a database pool.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

const selectBySiteSQL = `
	SELECT id, canvas_site_id, canvas_site_name, list_name, members_count,
	       populate_add_errors, populate_remove_errors, welcome_email_active,
	       welcome_email_body, welcome_email_subject
	  FROM canvas_site_mailing_lists
	 WHERE canvas_site_id = $1`

// FindBySite returns the list for a course site, or nil when none exists.
func (s *Store) FindBySite(ctx context.Context, canvasSiteID int) (*MailingList, error) {
	var list MailingList
	err := s.db.GetContext(ctx, &list, selectBySiteSQL, canvasSiteID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mailing list lookup failed: %w", err)
	}
	return &list, nil
}

// FindOrInitialize returns the stored list for a course site, or an unsaved
// record initialized from the site's name and term.
func (s *Store) FindOrInitialize(ctx context.Context, site *types.CanvasSite) (*MailingList, error) {
	list, err := s.FindBySite(ctx, site.ID)
	if err != nil {
		return nil, err
	}
	if list != nil {
		return list, nil
	}
	return initialize(site), nil
}

// Create stores a new list for a course site. An admin may override the
// derived list name.
func (s *Store) Create(ctx context.Context, site *types.CanvasSite, listName string) (*MailingList, error) {
	existing, err := s.FindBySite(ctx, site.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyExists
	}

	list := initialize(site)
	if listName != "" {
		list.ListName = &listName
	}
	const insertSQL = `
		INSERT INTO canvas_site_mailing_lists
		       (canvas_site_id, canvas_site_name, list_name, welcome_email_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := s.db.QueryRowxContext(ctx, insertSQL, list.CanvasSiteID, list.CanvasSiteName, list.ListName, list.WelcomeEmailActive).Scan(&list.ID); err != nil {
		return nil, fmt.Errorf("failed to create mailing list: %w", err)
	}
	return list, nil
}

func initialize(site *types.CanvasSite) *MailingList {
	siteName := strings.TrimSpace(site.Name)
	var term *berkeley.Term
	if site.Term != nil && site.Term.SISTermID != nil {
		if t, err := berkeley.FromCanvasSISTermID(*site.Term.SISTermID); err == nil {
			term = &t
		}
	}
	listName := NameForSite(siteName, term)
	return &MailingList{
		CanvasSiteID:   site.ID,
		CanvasSiteName: &siteName,
		ListName:       &listName,
	}
}
