package repository

import (
	"github.com/mkessler/timetrack/internal/database"
	apierrors "github.com/mkessler/timetrack/internal/errors"
	"github.com/mkessler/timetrack/internal/models"
	"gorm.io/gorm"
)

// GormCustomerRepository is a GORM implementation of CustomerRepository
type GormCustomerRepository struct {
	db    *gorm.DB
	scope teamScope
}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &GormCustomerRepository{
		db:    db,
		scope: teamScope{table: "customers", joinTable: "customer_teams", fk: "customer_id"},
	}
}

// Create creates a new customer
func (r *GormCustomerRepository) Create(customer *models.Customer) error {
	return apierrors.Persistence("insert customer", r.db.Create(customer).Error)
}

// FindByID finds a customer by ID. Visibility does not apply to direct
// lookups.
func (r *GormCustomerRepository) FindByID(id uint64) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.Preload("Teams").First(&customer, id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindAll lists every customer
func (r *GormCustomerRepository) FindAll(visibleOnly bool) ([]models.Customer, error) {
	var customers []models.Customer
	err := r.db.Scopes(database.Visible(visibleOnly)).Order("name").Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

// FindAllNotInTeam lists customers with zero team links
func (r *GormCustomerRepository) FindAllNotInTeam(visibleOnly bool) ([]models.Customer, error) {
	var customers []models.Customer
	err := r.scope.notInTeam(r.db.Model(&models.Customer{})).
		Scopes(database.Visible(visibleOnly)).
		Order("name").
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

// FindAllHaveTeams lists customers with at least one team link (admin view)
func (r *GormCustomerRepository) FindAllHaveTeams(visibleOnly bool) ([]models.Customer, error) {
	var customers []models.Customer
	err := r.scope.haveTeams(r.db.Model(&models.Customer{})).
		Scopes(database.Visible(visibleOnly)).
		Order("customers.name").
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

// FindAllByUserID lists customers reachable through the user's team
// memberships
func (r *GormCustomerRepository) FindAllByUserID(userID uint64, visibleOnly bool) ([]models.Customer, error) {
	var customers []models.Customer
	err := r.scope.byUserID(r.db.Model(&models.Customer{}), userID).
		Scopes(database.Visible(visibleOnly)).
		Order("customers.name").
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

// Update updates a customer
func (r *GormCustomerRepository) Update(customer *models.Customer) error {
	return apierrors.Persistence("update customer", r.db.Save(customer).Error)
}

// Delete removes a customer and its team links
func (r *GormCustomerRepository) Delete(id uint64) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", id).Delete(&models.CustomerTeam{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Customer{}, id).Error
	})
	return apierrors.Persistence("delete customer", err)
}

// UpdateTeams replaces the full team link set of a customer
func (r *GormCustomerRepository) UpdateTeams(customerID uint64, teamIDs []uint64) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", customerID).Delete(&models.CustomerTeam{}).Error; err != nil {
			return err
		}
		if len(teamIDs) == 0 {
			return nil
		}
		links := make([]models.CustomerTeam, len(teamIDs))
		for i, teamID := range teamIDs {
			links[i] = models.CustomerTeam{CustomerID: customerID, TeamID: teamID}
		}
		return tx.Create(&links).Error
	})
	return apierrors.Persistence("update customer teams", err)
}
