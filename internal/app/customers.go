package app

import (
	"fmt"
	"strings"

	"github.com/roach88/procount/internal/auth"
	"github.com/roach88/procount/internal/domain"
	"github.com/roach88/procount/internal/reducer"
)

// RegisterCustomer hashes password and registers c as a storefront customer
// of companyID. Hashing happens here so the reducer stays deterministic.
func (a *App) RegisterCustomer(companyID string, c domain.Customer, password string) (*reducer.State, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return a.State(), fmt.Errorf("register customer: %w", err)
	}
	c.PasswordHash = hash
	return a.Dispatch(reducer.CustomerRegister{CompanyID: companyID, Customer: c}), nil
}

// LoginCustomer signs in the customer of companyID with email and password.
func (a *App) LoginCustomer(companyID, email, password string) (*reducer.State, error) {
	var (
		found domain.Customer
		ok    bool
	)
	if cd := a.State().CompanyData[companyID]; cd != nil {
		for _, c := range cd.Customers {
			if c.Email != "" && strings.EqualFold(c.Email, email) {
				found, ok = c, true
				break
			}
		}
	}
	if !ok {
		return a.State(), fmt.Errorf("login customer: %w", auth.ErrInvalidCredentials)
	}
	if err := auth.CheckPassword(found.PasswordHash, password); err != nil {
		return a.State(), fmt.Errorf("login customer: %w", err)
	}
	return a.Dispatch(reducer.CustomerLogin{CompanyID: companyID, Customer: found}), nil
}
