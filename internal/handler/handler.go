// Package handler holds the gin route handlers for the scan endpoint and the
// admin dashboard API. Persistence is reached through small interfaces so the
// HTTP contracts are testable without a database.
package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"canteen/internal/config"
	"canteen/internal/device"
	"canteen/internal/directory"
	"canteen/internal/scan"
)

// DeviceStore is the device registry the admin routes use.
type DeviceStore interface {
	Create(ctx context.Context, name, description string) (device.Device, error)
	List(ctx context.Context) ([]device.Device, error)
	Delete(ctx context.Context, id string) error
}

// SubjectStore is the subject directory the admin routes use.
type SubjectStore interface {
	Create(ctx context.Context, s directory.Subject) (directory.Subject, error)
	List(ctx context.Context) ([]directory.Subject, error)
	Get(ctx context.Context, id string) (directory.Subject, error)
	Update(ctx context.Context, id, name, email, groupLabel string) (directory.Subject, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// SettingsStore reads and writes the cutoff setting.
type SettingsStore interface {
	OrderCutoff(ctx context.Context) (string, error)
	SetOrderCutoff(ctx context.Context, v string) error
}

// Handler bundles the route handlers and their dependencies.
type Handler struct {
	cfg      config.App
	scans    *scan.Service
	devices  DeviceStore
	subjects SubjectStore
	settings SettingsStore
	now      func() time.Time
}

// New creates a handler set.
func New(cfg config.App, scans *scan.Service, devices DeviceStore, subjects SubjectStore, settings SettingsStore) *Handler {
	return &Handler{
		cfg:      cfg,
		scans:    scans,
		devices:  devices,
		subjects: subjects,
		settings: settings,
		now:      time.Now,
	}
}

// internalError logs the cause server-side and answers with a generic message.
func internalError(c *gin.Context, action string, err error) {
	log.Printf("%s failed: %v", action, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
