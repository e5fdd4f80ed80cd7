package jobs

// LowStockAlertPayload is queued whenever an inventory write leaves a
// medicine at or below the restock threshold. Keep payload minimal and
// ID-based; the consumer does not need to reload the row to notify.
type LowStockAlertPayload struct {
	MedicineID string `json:"medicineId"`
	Name       string `json:"name"`
	Stock      int    `json:"stock"`
	Unit       string `json:"unit"`
	Threshold  int    `json:"threshold"`
	RequestID  string `json:"requestId,omitempty"` // optional: correlation
}
