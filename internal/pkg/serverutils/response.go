package serverutils

// Ack is the fixed-shape acknowledgment returned to the webhook transport.
type Ack struct {
	Status string `json:"status"`
}

func StatusResponse(status string) Ack {
	return Ack{Status: status}
}

// HealthResponse is the fixed status document served on the health path.
type HealthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Platform string `json:"platform"`
	Version  string `json:"version"`
}

func Health() HealthResponse {
	return HealthResponse{
		Status:   "healthy",
		Service:  "telegram-bot",
		Platform: "fiber+redis",
		Version:  "2.0.0",
	}
}
