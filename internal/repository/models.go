package repository

// Models lists every table owned by this service, in creation order.
func Models() []any {
	return []any{
		&ShowingModel{},
		&SeatModel{},
		&PromoModel{},
		&BookingReferenceModel{},
		&BookingModel{},
	}
}
