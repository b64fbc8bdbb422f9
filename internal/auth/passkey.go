package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/config"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"go.uber.org/zap"
)

// ContactDirectory finds and provisions contacts for passkey ceremonies.
// Provisioning a brand new signup creates the contact together with its
// own organization and owner permission, which lives in the service
// layer, so the directory is an interface here.
type ContactDirectory interface {
	FindByEmail(ctx context.Context, email string) (*domain.Contact, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Contact, error)
	Provision(ctx context.Context, email, firstName, lastName string) (*domain.Contact, error)
}

// CredentialStore persists registered passkey credentials
type CredentialStore interface {
	Create(ctx context.Context, cred *domain.PasskeyCredential) error
	ListByContact(ctx context.Context, contactID uuid.UUID) ([]domain.PasskeyCredential, error)
	UpdateSignCount(ctx context.Context, credentialID []byte, signCount uint32) error
}

// CeremonyStore persists challenge state between the start and finish
// halves of a ceremony
type CeremonyStore interface {
	Create(ctx context.Context, session *domain.WebauthnSession) error
	Get(ctx context.Context, id uuid.UUID) (*domain.WebauthnSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// passkeyUser adapts a contact and its credentials to the webauthn
// user interface
type passkeyUser struct {
	contact     *domain.Contact
	credentials []domain.PasskeyCredential
}

func (u *passkeyUser) WebAuthnID() []byte {
	return u.contact.ID[:]
}

func (u *passkeyUser) WebAuthnName() string {
	return u.contact.Email
}

func (u *passkeyUser) WebAuthnDisplayName() string {
	return u.contact.FullName()
}

func (u *passkeyUser) WebAuthnIcon() string {
	return ""
}

func (u *passkeyUser) WebAuthnCredentials() []webauthn.Credential {
	creds := make([]webauthn.Credential, 0, len(u.credentials))
	for _, c := range u.credentials {
		transports := make([]protocol.AuthenticatorTransport, 0, len(c.Transports))
		for _, t := range c.Transports {
			transports = append(transports, protocol.AuthenticatorTransport(t))
		}
		creds = append(creds, webauthn.Credential{
			ID:              c.CredentialID,
			PublicKey:       c.PublicKey,
			AttestationType: c.AttestationType,
			Transport:       transports,
			Authenticator: webauthn.Authenticator{
				AAGUID:    c.AAGUID,
				SignCount: c.SignCount,
			},
		})
	}
	return creds
}

// PasskeyService runs WebAuthn registration and login ceremonies.
// Challenge state is stored server-side keyed by a ceremony session ID
// so the finish call can run on any instance.
type PasskeyService struct {
	web        *webauthn.WebAuthn
	contacts   ContactDirectory
	creds      CredentialStore
	ceremonies CeremonyStore
	sessionTTL time.Duration
	logger     *zap.Logger
}

// NewPasskeyService creates a passkey ceremony service
func NewPasskeyService(cfg *config.WebAuthnConfig, contacts ContactDirectory, creds CredentialStore, ceremonies CeremonyStore, logger *zap.Logger) (*PasskeyService, error) {
	web, err := webauthn.New(&webauthn.Config{
		RPID:          cfg.RPID,
		RPDisplayName: cfg.RPDisplayName,
		RPOrigins:     cfg.RPOrigins,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize webauthn: %w", err)
	}
	return &PasskeyService{
		web:        web,
		contacts:   contacts,
		creds:      creds,
		ceremonies: ceremonies,
		sessionTTL: cfg.SessionTTLDuration(),
		logger:     logger,
	}, nil
}

// StartRegistration begins a credential registration ceremony. Unknown
// emails are provisioned as new tenants.
func (s *PasskeyService) StartRegistration(ctx context.Context, email, firstName, lastName string) (uuid.UUID, *protocol.CredentialCreation, error) {
	contact, err := s.contacts.FindByEmail(ctx, email)
	if err != nil {
		return uuid.Nil, nil, err
	}
	if contact == nil {
		contact, err = s.contacts.Provision(ctx, email, firstName, lastName)
		if err != nil {
			return uuid.Nil, nil, err
		}
	}

	existing, err := s.creds.ListByContact(ctx, contact.ID)
	if err != nil {
		return uuid.Nil, nil, err
	}

	user := &passkeyUser{contact: contact, credentials: existing}
	options, sessionData, err := s.web.BeginRegistration(user)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to begin registration: %w", err)
	}

	sessionID, err := s.storeCeremony(ctx, contact.ID, domain.CeremonyRegistration, sessionData)
	if err != nil {
		return uuid.Nil, nil, err
	}

	s.logger.Info("passkey registration started",
		zap.String("contact_id", contact.ID.String()),
		zap.String("session_id", sessionID.String()),
	)
	return sessionID, options, nil
}

// FinishRegistration verifies the authenticator response and persists
// the new credential. The credential payload is the raw JSON produced
// by navigator.credentials.create.
func (s *PasskeyService) FinishRegistration(ctx context.Context, sessionID uuid.UUID, credentialJSON []byte) (*domain.Contact, error) {
	session, sessionData, err := s.loadCeremony(ctx, sessionID, domain.CeremonyRegistration)
	if err != nil {
		return nil, err
	}

	contact, err := s.contactByID(ctx, session.ContactID)
	if err != nil {
		return nil, err
	}

	parsed, err := protocol.ParseCredentialCreationResponseBody(bytes.NewReader(credentialJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse credential response: %w", err)
	}

	existing, err := s.creds.ListByContact(ctx, contact.ID)
	if err != nil {
		return nil, err
	}
	user := &passkeyUser{contact: contact, credentials: existing}

	credential, err := s.web.CreateCredential(user, *sessionData, parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to verify credential: %w", err)
	}

	transports := make(domain.StringList, 0, len(credential.Transport))
	for _, t := range credential.Transport {
		transports = append(transports, string(t))
	}

	if err := s.creds.Create(ctx, &domain.PasskeyCredential{
		ContactID:       contact.ID,
		CredentialID:    credential.ID,
		PublicKey:       credential.PublicKey,
		AttestationType: credential.AttestationType,
		AAGUID:          credential.Authenticator.AAGUID,
		SignCount:       credential.Authenticator.SignCount,
		Transports:      transports,
	}); err != nil {
		return nil, err
	}

	_ = s.ceremonies.Delete(ctx, sessionID)

	s.logger.Info("passkey registered",
		zap.String("contact_id", contact.ID.String()),
	)
	return contact, nil
}

// StartLogin begins an authentication ceremony for a known email
func (s *PasskeyService) StartLogin(ctx context.Context, email string) (uuid.UUID, *protocol.CredentialAssertion, error) {
	contact, err := s.contacts.FindByEmail(ctx, email)
	if err != nil {
		return uuid.Nil, nil, err
	}
	if contact == nil {
		return uuid.Nil, nil, ErrNoAccess
	}

	credentials, err := s.creds.ListByContact(ctx, contact.ID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	if len(credentials) == 0 {
		return uuid.Nil, nil, ErrNoAccess
	}

	user := &passkeyUser{contact: contact, credentials: credentials}
	options, sessionData, err := s.web.BeginLogin(user)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to begin login: %w", err)
	}

	sessionID, err := s.storeCeremony(ctx, contact.ID, domain.CeremonyAuthentication, sessionData)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return sessionID, options, nil
}

// FinishLogin verifies the assertion and returns the authenticated
// contact. The stored sign count is advanced to the authenticator's.
func (s *PasskeyService) FinishLogin(ctx context.Context, sessionID uuid.UUID, credentialJSON []byte) (*domain.Contact, error) {
	session, sessionData, err := s.loadCeremony(ctx, sessionID, domain.CeremonyAuthentication)
	if err != nil {
		return nil, err
	}

	contact, err := s.contactByID(ctx, session.ContactID)
	if err != nil {
		return nil, err
	}

	parsed, err := protocol.ParseCredentialRequestResponseBody(bytes.NewReader(credentialJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse assertion response: %w", err)
	}

	credentials, err := s.creds.ListByContact(ctx, contact.ID)
	if err != nil {
		return nil, err
	}
	user := &passkeyUser{contact: contact, credentials: credentials}

	credential, err := s.web.ValidateLogin(user, *sessionData, parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to validate login: %w", err)
	}

	if err := s.creds.UpdateSignCount(ctx, credential.ID, credential.Authenticator.SignCount); err != nil {
		s.logger.Warn("failed to update credential sign count", zap.Error(err))
	}

	_ = s.ceremonies.Delete(ctx, sessionID)

	s.logger.Info("passkey login completed",
		zap.String("contact_id", contact.ID.String()),
	)
	return contact, nil
}

func (s *PasskeyService) storeCeremony(ctx context.Context, contactID uuid.UUID, ceremony domain.WebauthnCeremony, sessionData *webauthn.SessionData) (uuid.UUID, error) {
	data, err := json.Marshal(sessionData)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode ceremony session: %w", err)
	}
	session := &domain.WebauthnSession{
		ContactID: contactID,
		Ceremony:  ceremony,
		Data:      data,
		ExpiresAt: time.Now().UTC().Add(s.sessionTTL),
	}
	if err := s.ceremonies.Create(ctx, session); err != nil {
		return uuid.Nil, err
	}
	return session.ID, nil
}

func (s *PasskeyService) loadCeremony(ctx context.Context, sessionID uuid.UUID, ceremony domain.WebauthnCeremony) (*domain.WebauthnSession, *webauthn.SessionData, error) {
	session, err := s.ceremonies.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session == nil || session.Ceremony != ceremony {
		return nil, nil, fmt.Errorf("ceremony session not found")
	}
	if time.Now().UTC().After(session.ExpiresAt) {
		_ = s.ceremonies.Delete(ctx, sessionID)
		return nil, nil, fmt.Errorf("ceremony session expired")
	}

	var sessionData webauthn.SessionData
	if err := json.Unmarshal(session.Data, &sessionData); err != nil {
		return nil, nil, fmt.Errorf("failed to decode ceremony session: %w", err)
	}
	return session, &sessionData, nil
}

func (s *PasskeyService) contactByID(ctx context.Context, contactID uuid.UUID) (*domain.Contact, error) {
	contact, err := s.contacts.FindByID(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, fmt.Errorf("contact not found for ceremony session")
	}
	return contact, nil
}
