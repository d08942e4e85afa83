package repository

import (
	"errors"

	"eventpass/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CredentialRepository persists the access/refresh tokens and the
// serialized user record under fixed keys. Clear wipes all of them;
// logout and irrecoverable auth failure both go through it.
type CredentialRepository interface {
	AccessToken() (string, error)
	RefreshToken() (string, error)
	User() (string, error)

	SetAccessToken(token string) error
	SetSession(access, refresh, user string) error
	Clear() error
}

type credentialRepoImpl struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepoImpl{db: db}
}

func (r *credentialRepoImpl) get(key string) (string, error) {
	var cred model.Credential
	err := r.db.Where("key = ?", key).First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return cred.Value, nil
}

func (r *credentialRepoImpl) set(key, value string) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&model.Credential{Key: key, Value: value}).Error
}

func (r *credentialRepoImpl) AccessToken() (string, error) {
	return r.get(model.CredentialAccessToken)
}

func (r *credentialRepoImpl) RefreshToken() (string, error) {
	return r.get(model.CredentialRefreshToken)
}

func (r *credentialRepoImpl) User() (string, error) {
	return r.get(model.CredentialUser)
}

func (r *credentialRepoImpl) SetAccessToken(token string) error {
	return r.set(model.CredentialAccessToken, token)
}

// SetSession replaces the whole credential set atomically so a crash
// mid-login never leaves a token without its user record.
func (r *credentialRepoImpl) SetSession(access, refresh, user string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		repo := &credentialRepoImpl{db: tx}
		if err := repo.set(model.CredentialAccessToken, access); err != nil {
			return err
		}
		if err := repo.set(model.CredentialRefreshToken, refresh); err != nil {
			return err
		}
		return repo.set(model.CredentialUser, user)
	})
}

func (r *credentialRepoImpl) Clear() error {
	return r.db.Where("key IN ?", []string{
		model.CredentialAccessToken,
		model.CredentialRefreshToken,
		model.CredentialUser,
	}).Delete(&model.Credential{}).Error
}
