package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "flyerhub/internal/errors"
	"flyerhub/internal/model"
	"flyerhub/internal/repository"
	"flyerhub/internal/storage"
)

const fallbackContentType = "image/jpeg"

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// UploadInput is a flyer upload request.
type UploadInput struct {
	Title     string
	CompanyID uint
	Filename  string
	Size      int64
	Content   io.Reader
}

// Period selects one calendar month (UTC).
type Period struct {
	Year  int
	Month int
}

// NewPeriod builds a Period from optional year and month values. Both
// absent yields nil (no filter); exactly one present is invalid.
func NewPeriod(year, month *int) (*Period, error) {
	switch {
	case year == nil && month == nil:
		return nil, nil
	case year == nil || month == nil:
		return nil, apperrors.ErrInvalidPeriod
	case *year < 1 || *month < 1 || *month > 12:
		return nil, apperrors.ErrInvalidPeriod
	}
	return &Period{Year: *year, Month: *month}, nil
}

// Window returns the half-open time range covered by the period.
func (p Period) Window() repository.TimeWindow {
	from := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	return repository.TimeWindow{From: from, To: from.AddDate(0, 1, 0)}
}

// Download is a flyer's image content.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

// FlyerService handles flyer upload, listing, download and delete.
type FlyerService interface {
	Upload(ctx context.Context, in UploadInput) (*model.Flyer, error)
	Get(ctx context.Context, id uint) (*model.Flyer, error)
	ListByCompany(ctx context.Context, companyID uint, period *Period) ([]model.Flyer, error)
	Download(ctx context.Context, id uint) (*Download, error)
	Delete(ctx context.Context, id uint) error
}

type flyerService struct {
	tx           repository.Transactor
	flyers       repository.FlyerRepository
	companies    repository.CompanyRepository
	files        storage.FileStore
	publicPrefix string
	now          func() time.Time
}

// NewFlyerService creates a flyer service. publicPrefix is the URL prefix
// under which files are served and recorded, e.g. "/uploads".
func NewFlyerService(tx repository.Transactor, flyers repository.FlyerRepository, companies repository.CompanyRepository, files storage.FileStore, publicPrefix string) FlyerService {
	return &flyerService{
		tx:           tx,
		flyers:       flyers,
		companies:    companies,
		files:        files,
		publicPrefix: "/" + strings.Trim(publicPrefix, "/"),
		now:          time.Now,
	}
}

// Upload validates the request, writes the file and then inserts the record.
// The record is never committed without its file; if the insert fails the
// file is removed again.
func (s *flyerService) Upload(ctx context.Context, in UploadInput) (*model.Flyer, error) {
	if in.Content == nil || in.Size <= 0 {
		return nil, apperrors.ErrEmptyFile
	}
	ext := strings.ToLower(path.Ext(in.Filename))
	if !allowedExtensions[ext] {
		return nil, apperrors.ErrInvalidExtension
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperrors.ErrTitleRequired
	}
	ok, err := s.companies.Exists(ctx, in.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("check company: %w", err)
	}
	if !ok {
		return nil, apperrors.ErrCompanyNotFound
	}

	name := uuid.New().String() + ext
	written, err := s.files.Save(ctx, name, in.Content)
	if err != nil {
		return nil, fmt.Errorf("save flyer file: %w", err)
	}
	if written == 0 {
		s.discard(ctx, name)
		return nil, apperrors.ErrEmptyFile
	}

	flyer := &model.Flyer{
		Title:     title,
		ImagePath: path.Join(s.publicPrefix, name),
		CompanyID: in.CompanyID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.flyers.Create(ctx, flyer); err != nil {
		s.discard(ctx, name)
		return nil, fmt.Errorf("create flyer: %w", err)
	}
	return flyer, nil
}

func (s *flyerService) discard(ctx context.Context, name string) {
	if err := s.files.Remove(ctx, name); err != nil && !storage.IsNotExist(err) {
		log.Printf("flyer: failed to remove orphaned file %s: %v", name, err)
	}
}

// Get returns a flyer record.
func (s *flyerService) Get(ctx context.Context, id uint) (*model.Flyer, error) {
	flyer, err := s.flyers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFlyerNotFound
		}
		return nil, fmt.Errorf("find flyer: %w", err)
	}
	return flyer, nil
}

// ListByCompany returns the company's flyers newest first.
func (s *flyerService) ListByCompany(ctx context.Context, companyID uint, period *Period) ([]model.Flyer, error) {
	var window *repository.TimeWindow
	if period != nil {
		w := period.Window()
		window = &w
	}
	flyers, err := s.flyers.ListByCompany(ctx, companyID, window)
	if err != nil {
		return nil, fmt.Errorf("list flyers: %w", err)
	}
	return flyers, nil
}

// Download returns the image bytes of a flyer.
func (s *flyerService) Download(ctx context.Context, id uint) (*Download, error) {
	flyer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	name := path.Base(flyer.ImagePath)
	data, err := s.files.Read(ctx, name)
	if err != nil {
		if storage.IsNotExist(err) {
			return nil, apperrors.ErrFileNotFound
		}
		return nil, fmt.Errorf("read flyer file: %w", err)
	}

	return &Download{
		Filename:    name,
		ContentType: contentType(data),
		Data:        data,
	}, nil
}

func contentType(data []byte) string {
	mt := mimetype.Detect(data)
	if strings.HasPrefix(mt.String(), "image/") {
		return mt.String()
	}
	return fallbackContentType
}

// Delete drops the record and removes the file inside one transaction. A
// file that is already missing is fine; any other removal error rolls the
// record back, and a failed record delete leaves the file in place.
func (s *flyerService) Delete(ctx context.Context, id uint) error {
	flyer, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	return s.tx.WithTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Flyers.Delete(ctx, flyer.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrFlyerNotFound
			}
			return fmt.Errorf("delete flyer: %w", err)
		}

		if err := s.files.Remove(ctx, path.Base(flyer.ImagePath)); err != nil && !storage.IsNotExist(err) {
			return fmt.Errorf("remove flyer file: %w", err)
		}
		return nil
	})
}
