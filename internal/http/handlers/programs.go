package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/pharma-portal/internal/errors"
	"github.com/pribylovaa/pharma-portal/internal/models"
)

func (h *Handlers) ListPrograms(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	out, err := p.API.Programs.List(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) GetProgram(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out, err := p.API.Programs.Get(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) ProgramPatients(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out, err := p.API.Programs.PatientsFor(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) ListPatients(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	out, err := p.API.Programs.Patients(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) GetPatient(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out, err := p.API.Programs.Patient(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) CreatePatient(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	var in models.PatientInput
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	out, err := p.API.Programs.CreatePatient(r.Context(), in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in models.PatientInput
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	out, err := p.API.Programs.UpdatePatient(r.Context(), id, in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) DeletePatient(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := p.API.Programs.DeletePatient(r.Context(), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
