package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore"
)

type ProfileRepository struct {
	collection[employee.EmployeeProfile]
}

var _ employee.ProfileRepository = (*ProfileRepository)(nil)

func NewProfileRepository(store docstore.Store) *ProfileRepository {
	return &ProfileRepository{collection[employee.EmployeeProfile]{
		store:    store,
		name:     CollectionEmployees,
		encode:   encodeProfile,
		decode:   decodeProfile,
		notFound: employee.ErrProfileNotFound,
	}}
}

func encodeProfile(p employee.EmployeeProfile) docstore.Document {
	pi, ci, bi, wi := p.PersonalInfo, p.ContactInfo, p.BankingInfo, p.WorkInfo
	return docstore.Document{
		"personalInfo": map[string]any{
			"firstName":     pi.FirstName,
			"middleName":    pi.MiddleName,
			"lastName":      pi.LastName,
			"dateOfBirth":   docstore.TimestampPtr(pi.DateOfBirth),
			"gender":        pi.Gender,
			"nationality":   pi.Nationality,
			"maritalStatus": pi.MaritalStatus,
		},
		"contactInfo": map[string]any{
			"email":                 ci.Email,
			"phone":                 ci.Phone,
			"address":               ci.Address,
			"emergencyContactName":  ci.EmergencyContactName,
			"emergencyContactPhone": ci.EmergencyContactPhone,
		},
		"bankingInfo": map[string]any{
			"bankName":          bi.BankName,
			"accountNumber":     bi.AccountNumber,
			"accountHolderName": bi.AccountHolderName,
		},
		"workInfo": map[string]any{
			"employeeCode": wi.EmployeeCode,
			"department":   wi.Department,
			"position":     wi.Position,
			"hireDate":     docstore.TimestampPtr(wi.HireDate),
			"managerId":    wi.ManagerID,
			"role":         string(wi.Role),
		},
		// top-level copies for queries on nested values
		"role":                string(wi.Role),
		"department":          wi.Department,
		"profileCompleteness": p.ProfileCompleteness,
		"createdAt":           docstore.Timestamp(p.CreatedAt),
		"updatedAt":           docstore.Timestamp(p.UpdatedAt),
	}
}

func decodeProfile(doc docstore.Document) employee.EmployeeProfile {
	pi, ci, bi, wi := doc.Doc("personalInfo"), doc.Doc("contactInfo"), doc.Doc("bankingInfo"), doc.Doc("workInfo")
	return employee.EmployeeProfile{
		ID: doc.ID(),
		PersonalInfo: employee.PersonalInfo{
			FirstName:     pi.String("firstName"),
			MiddleName:    pi.String("middleName"),
			LastName:      pi.String("lastName"),
			DateOfBirth:   pi.TimePtr("dateOfBirth"),
			Gender:        pi.String("gender"),
			Nationality:   pi.String("nationality"),
			MaritalStatus: pi.String("maritalStatus"),
		},
		ContactInfo: employee.ContactInfo{
			Email:                 ci.String("email"),
			Phone:                 ci.String("phone"),
			Address:               ci.String("address"),
			EmergencyContactName:  ci.String("emergencyContactName"),
			EmergencyContactPhone: ci.String("emergencyContactPhone"),
		},
		BankingInfo: employee.BankingInfo{
			BankName:          bi.String("bankName"),
			AccountNumber:     bi.String("accountNumber"),
			AccountHolderName: bi.String("accountHolderName"),
		},
		WorkInfo: employee.WorkInfo{
			EmployeeCode: wi.String("employeeCode"),
			Department:   wi.String("department"),
			Position:     wi.String("position"),
			HireDate:     wi.TimePtr("hireDate"),
			ManagerID:    wi.String("managerId"),
			Role:         employee.Role(wi.String("role")),
		},
		ProfileCompleteness: doc.Int("profileCompleteness"),
		CreatedAt:           doc.Time("createdAt"),
		UpdatedAt:           doc.Time("updatedAt"),
	}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (employee.EmployeeProfile, error) {
	return r.get(ctx, id)
}

func (r *ProfileRepository) Create(ctx context.Context, profile employee.EmployeeProfile) error {
	if profile.ID == "" {
		return employee.ErrEmployeeIDRequired
	}
	err := r.create(ctx, profile.ID, profile)
	if errors.Is(err, docstore.ErrAlreadyExists) {
		return fmt.Errorf("%w: %w", employee.ErrProfileExists, err)
	}
	return err
}

func (r *ProfileRepository) Save(ctx context.Context, profile employee.EmployeeProfile) error {
	if profile.ID == "" {
		return employee.ErrEmployeeIDRequired
	}
	return r.put(ctx, profile.ID, profile)
}

func (r *ProfileRepository) ListByRole(ctx context.Context, role employee.Role) ([]employee.EmployeeProfile, error) {
	return r.query(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Eq("role", string(role))},
	})
}

func (r *ProfileRepository) Watch(ctx context.Context, id string, fn func(*employee.EmployeeProfile)) (func(), error) {
	return r.watch(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Eq(docstore.FieldID, id)},
		Limit:   1,
	}, func(profiles []employee.EmployeeProfile) {
		if len(profiles) == 0 {
			fn(nil)
			return
		}
		p := profiles[0]
		fn(&p)
	})
}

// IsNotFound reports whether err is a not-found error from any repository.
func IsNotFound(err error) bool {
	return errors.Is(err, docstore.ErrNotFound)
}
