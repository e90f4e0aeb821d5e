package repository

import (
	"boxoffice/internal/database"
)

type Repositories struct {
	Sales    *SaleRepository
	Students *StudentRepository
	Settings *SettingsRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Sales:    NewSaleRepository(db),
		Students: NewStudentRepository(db),
		Settings: NewSettingsRepository(db),
	}
}
