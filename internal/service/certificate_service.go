package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/smsi-platform/smsi-backend/internal/model"
	"github.com/smsi-platform/smsi-backend/internal/repository"
)

// CertificateRenderer draws a certificate document.
type CertificateRenderer interface {
	Render(w io.Writer, data *model.CertificateData) error
	ContentType() string
	Extension() string
}

// Eligible reports whether a result unlocks a certificate.
func Eligible(result *model.Result) bool {
	return result != nil && result.Passed
}

// CertificateService gates and issues completion certificates.
type CertificateService struct {
	users    UserStore
	modules  ModuleStore
	results  ResultStore
	renderer CertificateRenderer
	log      zerolog.Logger
	random   io.Reader
}

// NewCertificateService creates a new CertificateService.
func NewCertificateService(
	users UserStore,
	modules ModuleStore,
	results ResultStore,
	renderer CertificateRenderer,
	log zerolog.Logger,
) *CertificateService {
	return &CertificateService{
		users:    users,
		modules:  modules,
		results:  results,
		renderer: renderer,
		log:      log.With().Str("component", "certificate_service").Logger(),
		random:   rand.Reader,
	}
}

// ListCertificates returns the certificates a user has earned.
func (s *CertificateService) ListCertificates(ctx context.Context, userID int) ([]model.Certificate, error) {
	return s.results.ListCertificates(ctx, userID)
}

// Generate renders the certificate of a passed module and marks it issued.
// Eligibility is read from the stored result, never from the request.
func (s *CertificateService) Generate(ctx context.Context, userID, moduleID int) (*model.GeneratedCertificate, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	module, err := s.modules.GetByID(ctx, moduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("get module: %w", err)
	}

	result, err := s.results.GetByUserAndModule(ctx, userID, moduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("get result: %w", err)
	}

	if !Eligible(result) {
		return nil, ErrNotEligible
	}

	certID, err := s.certificateID(userID, moduleID, result)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, &model.CertificateData{
		CertificateID: certID,
		UserName:      user.Name,
		UserEmail:     user.Email,
		ModuleTitle:   module.Title,
		Score:         result.Score,
		CompletedAt:   result.CompletedAt,
	}); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}

	first, err := s.results.MarkCertificateGenerated(ctx, userID, moduleID)
	if err != nil {
		return nil, fmt.Errorf("mark certificate generated: %w", err)
	}

	return &model.GeneratedCertificate{
		CertificateID: certID,
		Filename:      fmt.Sprintf("SMSI-Certificate-%s-%s.%s", slug(module.Title), certID, s.renderer.Extension()),
		ContentType:   s.renderer.ContentType(),
		Content:       buf.Bytes(),
		FirstIssue:    first,
	}, nil
}

const certAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// certificateID builds SMSI-YYYYMMDD-UUUU-MM-XXXX from the completion date,
// zero-padded user and module ids and four random base36 characters.
func (s *CertificateService) certificateID(userID, moduleID int, result *model.Result) (string, error) {
	raw := make([]byte, 4)
	if _, err := io.ReadFull(s.random, raw); err != nil {
		return "", fmt.Errorf("certificate id entropy: %w", err)
	}
	for i, b := range raw {
		raw[i] = certAlphabet[int(b)%len(certAlphabet)]
	}
	return fmt.Sprintf("SMSI-%s-%04d-%02d-%s",
		result.CompletedAt.Format("20060102"), userID, moduleID, raw), nil
}

var nonSlug = regexp.MustCompile(`[^A-Za-z0-9]+`)

func slug(title string) string {
	return strings.Trim(nonSlug.ReplaceAllString(title, "-"), "-")
}
