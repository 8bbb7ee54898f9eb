package repositories

import (
	"github.com/volunhub/backend/internal/models"
	"gorm.io/gorm"
)

// ApplicationRepository defines the interface for volunteer application operations
type ApplicationRepository interface {
	CreateApplication(application *models.Application) error
	GetApplicationByID(id uint) (*models.Application, error)
	GetByVolunteerID(volunteerID uint) ([]models.Application, error)
	GetByOpportunityIDs(opportunityIDs []string) ([]models.Application, error)
	HasApplied(opportunityID string, volunteerID uint) (bool, error)
	UpdateApplication(application *models.Application) error
	DeleteByOpportunityID(opportunityID string) error
	CountByVolunteer(volunteerID uint, status string) (int64, error)
	CountByOpportunityIDs(opportunityIDs []string, status string) (int64, error)
	CountDistinctVolunteers(opportunityIDs []string, status string) (int64, error)
}

type postgresApplicationRepository struct {
	db *gorm.DB
}

func NewPostgresApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &postgresApplicationRepository{db: db}
}

func (r *postgresApplicationRepository) CreateApplication(application *models.Application) error {
	return r.db.Create(application).Error
}

func (r *postgresApplicationRepository) GetApplicationByID(id uint) (*models.Application, error) {
	var application models.Application
	if err := r.db.First(&application, id).Error; err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *postgresApplicationRepository) GetByVolunteerID(volunteerID uint) ([]models.Application, error) {
	var applications []models.Application
	err := r.db.Where("volunteer_id = ?", volunteerID).
		Order("created_at DESC").
		Find(&applications).Error
	return applications, err
}

func (r *postgresApplicationRepository) GetByOpportunityIDs(opportunityIDs []string) ([]models.Application, error) {
	var applications []models.Application
	if len(opportunityIDs) == 0 {
		return applications, nil
	}
	err := r.db.Where("opportunity_id IN ?", opportunityIDs).
		Order("created_at DESC").
		Find(&applications).Error
	return applications, err
}

func (r *postgresApplicationRepository) HasApplied(opportunityID string, volunteerID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Application{}).
		Where("opportunity_id = ? AND volunteer_id = ?", opportunityID, volunteerID).
		Count(&count).Error
	return count > 0, err
}

func (r *postgresApplicationRepository) UpdateApplication(application *models.Application) error {
	return r.db.Save(application).Error
}

// DeleteByOpportunityID removes every application attached to an
// opportunity. Called when an NGO deletes the opportunity itself.
func (r *postgresApplicationRepository) DeleteByOpportunityID(opportunityID string) error {
	return r.db.Where("opportunity_id = ?", opportunityID).
		Delete(&models.Application{}).Error
}

func (r *postgresApplicationRepository) CountByVolunteer(volunteerID uint, status string) (int64, error) {
	var count int64
	q := r.db.Model(&models.Application{}).Where("volunteer_id = ?", volunteerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&count).Error
	return count, err
}

func (r *postgresApplicationRepository) CountByOpportunityIDs(opportunityIDs []string, status string) (int64, error) {
	if len(opportunityIDs) == 0 {
		return 0, nil
	}
	var count int64
	q := r.db.Model(&models.Application{}).Where("opportunity_id IN ?", opportunityIDs)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&count).Error
	return count, err
}

func (r *postgresApplicationRepository) CountDistinctVolunteers(opportunityIDs []string, status string) (int64, error) {
	if len(opportunityIDs) == 0 {
		return 0, nil
	}
	var count int64
	q := r.db.Model(&models.Application{}).
		Distinct("volunteer_id").
		Where("opportunity_id IN ?", opportunityIDs)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&count).Error
	return count, err
}
