package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"gorm.io/gorm"

	"meca_backend/internal/config"
	"meca_backend/internal/email"
	"meca_backend/internal/logger"
	"meca_backend/internal/models"
	"meca_backend/internal/repositories"
	"meca_backend/internal/services/dto"
	"meca_backend/internal/workers"
	"meca_backend/pkg/apperrors"
)

// VerificationService owns single-use reference tokens: issuing them when an
// application is submitted and redeeming them when a reference responds.
type VerificationService interface {
	IssueReferenceTokens(db *gorm.DB, application *models.Application)
	Verify(db *gorm.DB, req *dto.VerifyReferenceRequest) (*dto.VerifyReferenceResponse, error)
}

type verificationService struct {
	tokenRepo       repositories.TokenRepository
	applicationRepo repositories.ApplicationRepository
	notifier        workers.Notifier
}

func NewVerificationService(
	tokenRepo repositories.TokenRepository,
	applicationRepo repositories.ApplicationRepository,
	notifier workers.Notifier,
) VerificationService {
	return &verificationService{
		tokenRepo:       tokenRepo,
		applicationRepo: applicationRepo,
		notifier:        notifier,
	}
}

// IssueReferenceTokens generates one token per reference and mails the
// verification link. Best-effort end to end: a failure to persist or mail
// one token is logged and the rest proceed. Submission never fails because
// a reference could not be contacted.
func (s *verificationService) IssueReferenceTokens(db *gorm.DB, application *models.Application) {
	purpose := models.ReferencePurpose(application.RoleType)
	ttlDays := config.GetConfig().Tokens.ReferenceTTLDays

	for i := range application.References {
		ref := &application.References[i]

		raw, err := generateToken()
		if err != nil {
			logger.Error("failed to generate reference token",
				"application_id", application.ID, "reference_email", ref.Email, "error", err.Error())
			continue
		}

		token := &models.VerificationToken{
			Token:     raw,
			Email:     ref.Email,
			Purpose:   purpose,
			ExpiresAt: time.Now().AddDate(0, 0, ttlDays),
		}
		if err := s.tokenRepo.Create(db, token); err != nil {
			logger.Error("failed to persist reference token",
				"application_id", application.ID, "reference_email", ref.Email, "error", err.Error())
			continue
		}

		// The token row survives even when mail dispatch fails; a support
		// path can re-send the link later.
		s.enqueueVerificationMail(ref, application, raw, token.ExpiresAt)
	}
}

func (s *verificationService) enqueueVerificationMail(ref *models.Reference, application *models.Application, token string, expiresAt time.Time) {
	cfg := config.GetConfig()

	html, err := email.Render("reference_verification", map[string]interface{}{
		"ReferenceName": ref.Name,
		"ApplicantName": application.FirstName + " " + application.LastName,
		"RoleLabel":     roleLabel(application.RoleType),
		"VerifyURL":     fmt.Sprintf("%s/verify-reference?token=%s", cfg.Email.BaseURL, token),
		"ExpiresAt":     expiresAt.Format("January 2, 2006"),
	})
	if err != nil {
		logger.Error("failed to render verification mail", "error", err.Error())
		return
	}

	s.notifier.Enqueue(&email.Message{
		To:      ref.Email,
		Subject: "Reference verification requested",
		HTML:    html,
	})
}

// Verify redeems a token and stamps the matching reference, atomically.
// The used-flag guard in MarkUsed makes double submission lose cleanly: the
// second call sees "already used" and fails, it never silently succeeds.
func (s *verificationService) Verify(db *gorm.DB, req *dto.VerifyReferenceRequest) (*dto.VerifyReferenceResponse, error) {
	var referenceID string

	err := db.Transaction(func(tx *gorm.DB) error {
		token, err := s.tokenRepo.FindUnused(tx, req.Token)
		if err != nil {
			if apperrors.Is(err, repositories.ErrTokenNotFound) {
				return apperrors.ErrNotFound("verification", "Verification token not found or already used")
			}
			return err
		}

		now := time.Now()
		if token.Expired(now) {
			return apperrors.ErrTokenExpired("verification", "Verification token has expired")
		}

		role := models.PersonnelRoleJudge
		if token.Purpose == models.TokenPurposeEventDirectorReference {
			role = models.PersonnelRoleEventDirector
		}

		reference, err := s.applicationRepo.FindUncheckedReferenceByEmail(tx, token.Email, role)
		if err != nil {
			if apperrors.Is(err, repositories.ErrReferenceNotFound) {
				return apperrors.ErrConflict("verification", "Reference has already been checked")
			}
			return err
		}

		if err := s.tokenRepo.MarkUsed(tx, token.ID, now); err != nil {
			if apperrors.Is(err, repositories.ErrTokenUsed) {
				return apperrors.ErrConflict("verification", "Verification token has already been used")
			}
			return err
		}

		if err := s.applicationRepo.MarkReferenceChecked(tx, reference.ID, req.ResponseText, now); err != nil {
			if apperrors.Is(err, repositories.ErrReferenceNotFound) {
				return apperrors.ErrConflict("verification", "Reference has already been checked")
			}
			return err
		}

		referenceID = reference.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.VerifyReferenceResponse{ReferenceID: referenceID, Checked: true}, nil
}

// generateToken returns a 64-character hex token from 32 random bytes.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func roleLabel(role models.PersonnelRole) string {
	if role == models.PersonnelRoleEventDirector {
		return "event director"
	}
	return "judge"
}
