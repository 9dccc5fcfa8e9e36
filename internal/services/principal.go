package services

import "homefix_backend/internal/models"

// Principal — проверенный вызывающий (из JWT), неподделываемый для сервисов
type Principal struct {
	UserID string
	Role   models.UserRole
}

func (p Principal) IsHomeowner() bool { return p.Role == models.UserRoleHomeowner }
func (p Principal) IsWorker() bool    { return p.Role == models.UserRoleWorker }
