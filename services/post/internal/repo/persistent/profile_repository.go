package persistent

import (
	"akiya-share/services/post/internal/entity"
	"akiya-share/services/post/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository interface {
	GetByID(id string) (*entity.Profile, error)
	Upsert(profile *entity.Profile) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByID(id string) (*entity.Profile, error) {
	var profileModel model.ProfileModel
	if err := r.db.Where("id = ?", id).First(&profileModel).Error; err != nil {
		return nil, translate(err)
	}
	return ToProfileEntity(&profileModel), nil
}

func (r *profileRepository) Upsert(profile *entity.Profile) error {
	profileModel := ToProfileModel(profile)
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "avatar_url", "bio", "updated_at"}),
	}).Create(profileModel).Error
	if err != nil {
		return translate(err)
	}
	*profile = *ToProfileEntity(profileModel)
	return nil
}
