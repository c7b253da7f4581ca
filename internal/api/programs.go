package api

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pribylovaa/pharma-portal/internal/apiclient"
	"github.com/pribylovaa/pharma-portal/internal/models"
)

// Programs — программы раннего доступа и их пациенты (/access-program/*).
type Programs struct {
	c *apiclient.Client
}

func (p *Programs) List(ctx context.Context) ([]models.AccessProgram, error) {
	const op = "api.Programs.List"

	out, err := apiclient.Call[[]models.AccessProgram](ctx, p.c, apiclient.Get("/access-program", nil))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (p *Programs) Get(ctx context.Context, id int) (models.AccessProgram, error) {
	const op = "api.Programs.Get"

	out, err := apiclient.Call[models.AccessProgram](ctx, p.c, apiclient.Get(programPath(id), nil))
	if err != nil {
		return models.AccessProgram{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (p *Programs) PatientsFor(ctx context.Context, programID int) ([]models.Patient, error) {
	const op = "api.Programs.PatientsFor"

	out, err := apiclient.Call[[]models.Patient](ctx, p.c, apiclient.Get(programPath(programID)+"/patients", nil))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (p *Programs) Patients(ctx context.Context) ([]models.Patient, error) {
	const op = "api.Programs.Patients"

	out, err := apiclient.Call[[]models.Patient](ctx, p.c, apiclient.Get("/access-program/patients/all", nil))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (p *Programs) Patient(ctx context.Context, id int) (models.Patient, error) {
	const op = "api.Programs.Patient"

	out, err := apiclient.Call[models.Patient](ctx, p.c, apiclient.Get(patientPath(id), nil))
	if err != nil {
		return models.Patient{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (p *Programs) CreatePatient(ctx context.Context, in models.PatientInput) (models.Patient, error) {
	const op = "api.Programs.CreatePatient"

	out, err := apiclient.Call[models.Patient](ctx, p.c, apiclient.Post("/access-program/patients", in))
	if err != nil {
		return models.Patient{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// UpdatePatient — частичное обновление: пустые поля in не отправляются.
func (p *Programs) UpdatePatient(ctx context.Context, id int, in models.PatientInput) (models.Patient, error) {
	const op = "api.Programs.UpdatePatient"

	out, err := apiclient.Call[models.Patient](ctx, p.c, apiclient.Patch(patientPath(id), in))
	if err != nil {
		return models.Patient{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (p *Programs) DeletePatient(ctx context.Context, id int) error {
	const op = "api.Programs.DeletePatient"

	if err := p.c.Do(ctx, apiclient.Delete(patientPath(id)), nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func programPath(id int) string { return "/access-program/" + strconv.Itoa(id) }

func patientPath(id int) string { return "/access-program/patients/" + strconv.Itoa(id) }
