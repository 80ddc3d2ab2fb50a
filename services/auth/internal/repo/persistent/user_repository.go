package persistent

import (
	"errors"

	"akiya-share/services/auth/internal/entity"
	"akiya-share/services/auth/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("record not found")

type UserRepository interface {
	Create(user *entity.User) error
	GetByEmail(email string) (*entity.User, error)
	GetByID(id string) (*entity.User, error)
	Update(user *entity.User) error
	GetProfile(id string) (*entity.Profile, error)
	UpsertProfile(profile *entity.Profile) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *userRepository) Create(user *entity.User) error {
	userModel := ToUserModel(user)
	if userModel.ID == "" {
		userModel.ID = uuid.New().String()
	}
	if err := r.db.Create(userModel).Error; err != nil {
		return err
	}
	*user = *ToUserEntity(userModel)
	return nil
}

func (r *userRepository) GetByEmail(email string) (*entity.User, error) {
	var userModel model.UserModel
	if err := r.db.Where("lower(email) = lower(?)", email).First(&userModel).Error; err != nil {
		return nil, notFound(err)
	}
	return ToUserEntity(&userModel), nil
}

func (r *userRepository) GetByID(id string) (*entity.User, error) {
	var userModel model.UserModel
	if err := r.db.Where("id = ?", id).First(&userModel).Error; err != nil {
		return nil, notFound(err)
	}
	return ToUserEntity(&userModel), nil
}

func (r *userRepository) Update(user *entity.User) error {
	userModel := ToUserModel(user)
	return r.db.Save(userModel).Error
}

func (r *userRepository) GetProfile(id string) (*entity.Profile, error) {
	var profileModel model.ProfileModel
	if err := r.db.Where("id = ?", id).First(&profileModel).Error; err != nil {
		return nil, notFound(err)
	}
	return ToProfileEntity(&profileModel), nil
}

// UpsertProfile inserts the row or overwrites it on id conflict.
func (r *userRepository) UpsertProfile(profile *entity.Profile) error {
	profileModel := ToProfileModel(profile)
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "avatar_url", "bio", "updated_at"}),
	}).Create(profileModel).Error
	if err != nil {
		return err
	}
	*profile = *ToProfileEntity(profileModel)
	return nil
}
