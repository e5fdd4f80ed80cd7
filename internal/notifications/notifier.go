package notifications

import "context"

type LowStockAlertInput struct {
	MedicineID string
	Name       string
	Stock      int
	Unit       string
	Threshold  int
}

type Notifier interface {
	SendLowStockAlert(ctx context.Context, input LowStockAlertInput) error
}
