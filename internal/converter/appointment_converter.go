package converter

import (
	"fabrication-workflow/internal/delivery/dto"
	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/domain/transition"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appt *entity.Appointment) *dto.AppointmentResponse {
	if appt == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:              appt.ID,
		CustomerID:      appt.CustomerID,
		Type:            string(appt.Type),
		Date:            appt.Date.Format(entity.DateLayout),
		SlotCode:        appt.SlotCode,
		Status:          string(appt.Status),
		StaffID:         appt.StaffID,
		RescheduleCount: appt.RescheduleCount,
		MaxReschedules:  appt.MaxReschedules,
		Address:         appt.Address,
		Latitude:        appt.Latitude,
		Longitude:       appt.Longitude,
		RequestedSlot:   appt.RequestedSlot,
		Notes:           appt.Notes,
		CancelReason:    appt.CancelReason,
		AllowedActions:  statesToStrings(transition.Appointment.AllowedFrom(appt.Status)),
		ConfirmedAt:     appt.ConfirmedAt,
		CompletedAt:     appt.CompletedAt,
		CancelledAt:     appt.CancelledAt,
		CreatedAt:       appt.CreatedAt,
		UpdatedAt:       appt.UpdatedAt,
	}

	if appt.RequestedDate != nil {
		response.RequestedDate = appt.RequestedDate.Format(entity.DateLayout)
	}

	// Fee is only present on priced site visits
	if appt.FeeTotal.Valid {
		fee := &dto.FeeResponse{
			BaseFee:     appt.FeeBase.Decimal,
			DistanceFee: appt.FeeDistance.Decimal,
			TotalFee:    appt.FeeTotal.Decimal,
		}
		if appt.FeeDistanceKm != nil {
			fee.DistanceKm = *appt.FeeDistanceKm
		}
		if appt.FeeEtaMinutes != nil {
			fee.EtaMinutes = *appt.FeeEtaMinutes
		}
		response.Fee = fee
	}

	return response
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appts []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appts))
	for i := range appts {
		if resp := AppointmentToResponse(&appts[i]); resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}

// HoldToResponse converts a ReservationHold entity to HoldResponse DTO
func HoldToResponse(hold *entity.ReservationHold) *dto.HoldResponse {
	if hold == nil {
		return nil
	}
	return &dto.HoldResponse{
		HoldDate:  hold.HoldDate,
		SlotCode:  hold.SlotCode,
		StaffID:   hold.StaffID,
		Confirmed: hold.Confirmed,
		ExpiresAt: hold.ExpiresAt,
	}
}

func statesToStrings[S ~string](states []S) []string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = string(s)
	}
	return out
}
