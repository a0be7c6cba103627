package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iliyamo/account-dashboard/internal/model"
	"github.com/iliyamo/account-dashboard/internal/storage"
	"github.com/iliyamo/account-dashboard/internal/utils"
)

// exportLimit caps how many activity records ship with a data export.
const exportLimit = 100

// exportProfile is the JSON shape of the profile inside an export. All
// timestamps are RFC 3339 strings; the password hash never leaves the
// database.
type exportProfile struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Role          string  `json:"role"`
	Status        string  `json:"status"`
	EmailVerified bool    `json:"emailVerified"`
	Has2FA        bool    `json:"has2FA"`
	Image         string  `json:"image,omitempty"`
	Bio           string  `json:"bio,omitempty"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
	LastLoginAt   *string `json:"lastLoginAt,omitempty"`
}

type exportActivity struct {
	Type        string            `json:"type"`
	Description string            `json:"description"`
	Status      string            `json:"status"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Timestamp   string            `json:"timestamp"`
}

// ExportDocument is the full JSON export payload.
type ExportDocument struct {
	Profile      exportProfile    `json:"profile"`
	ActivityLogs []exportActivity `json:"activityLogs"`
}

func toExportProfile(p model.Profile) exportProfile {
	out := exportProfile{
		ID:            p.ID,
		Name:          p.Name,
		Email:         p.Email,
		Role:          p.Role,
		Status:        p.Status,
		EmailVerified: p.EmailVerified,
		Has2FA:        p.Has2FA,
		Image:         p.Image,
		Bio:           p.Bio,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if p.LastLoginAt != nil {
		s := p.LastLoginAt.UTC().Format(time.RFC3339)
		out.LastLoginAt = &s
	}
	return out
}

// BuildExportJSON serializes a profile and its activity into the JSON
// export document.
func BuildExportJSON(p model.Profile, logs []model.Activity) ([]byte, error) {
	doc := ExportDocument{
		Profile:      toExportProfile(p),
		ActivityLogs: make([]exportActivity, 0, len(logs)),
	}
	for _, a := range logs {
		doc.ActivityLogs = append(doc.ActivityLogs, exportActivity{
			Type:        string(a.Type),
			Description: a.Description,
			Status:      a.Status,
			Metadata:    a.Metadata,
			Timestamp:   a.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return json.MarshalIndent(doc, "", "  ")
}

// BuildExportCSV flattens the export into a header line plus a single data
// row. The activity array is JSON-stringified into one cell; embedded
// double quotes are escaped by doubling.
func BuildExportCSV(p model.Profile, logs []model.Activity) ([]byte, error) {
	doc := ExportDocument{
		Profile:      toExportProfile(p),
		ActivityLogs: make([]exportActivity, 0, len(logs)),
	}
	for _, a := range logs {
		doc.ActivityLogs = append(doc.ActivityLogs, exportActivity{
			Type:        string(a.Type),
			Description: a.Description,
			Status:      a.Status,
			Metadata:    a.Metadata,
			Timestamp:   a.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	activityJSON, err := json.Marshal(doc.ActivityLogs)
	if err != nil {
		return nil, err
	}

	header := utils.CSVRow([]string{
		"id", "name", "email", "role", "status", "emailVerified", "has2FA",
		"image", "bio", "createdAt", "updatedAt", "lastLoginAt", "activityLogs",
	})
	last := ""
	if doc.Profile.LastLoginAt != nil {
		last = *doc.Profile.LastLoginAt
	}
	row := utils.CSVRow([]string{
		doc.Profile.ID, doc.Profile.Name, doc.Profile.Email, doc.Profile.Role,
		doc.Profile.Status, fmt.Sprintf("%t", doc.Profile.EmailVerified),
		fmt.Sprintf("%t", doc.Profile.Has2FA), doc.Profile.Image, doc.Profile.Bio,
		doc.Profile.CreatedAt, doc.Profile.UpdatedAt, last, string(activityJSON),
	})
	return []byte(header + "\n" + row + "\n"), nil
}

// ExportUserData assembles the user's profile plus up to 100 newest
// activity records, uploads the file to blob storage under the user's
// prefix and returns a presigned download URL.
func (s *AccountService) ExportUserData(ctx context.Context, userID, format string) (string, error) {
	p, err := s.Profiles.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	logs, err := s.Activity.ListByUser(ctx, userID, exportLimit)
	if err != nil {
		return "", err
	}

	var (
		body        []byte
		contentType string
		ext         string
	)
	switch format {
	case "csv":
		body, err = BuildExportCSV(p, logs)
		contentType, ext = "text/csv", "csv"
	default:
		body, err = BuildExportJSON(p, logs)
		contentType, ext = "application/json", "json"
	}
	if err != nil {
		return "", err
	}

	key := storage.ExportKey(userID, ext)
	if err := s.Blobs.Upload(ctx, key, contentType, body); err != nil {
		return "", err
	}
	url, err := s.Blobs.SignedURL(ctx, key, 24*time.Hour)
	if err != nil {
		return "", err
	}

	s.logActivity(ctx, userID, model.ActivityDataExport, "data export generated", model.ActivitySuccess,
		map[string]string{"format": ext})
	return url, nil
}
