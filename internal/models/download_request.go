// Package models содержит доменную модель заявки на скачивание документа.
//
// Заявка проходит жизненный цикл pending → approved | rejected; терминальные
// статусы необратимы. Одобренная заявка действует до expires_at и после этого
// считается неактивной без изменения сохранённого статуса.
package models

import "time"

// Статусы заявки на скачивание.
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// DownloadRequest представляет заявку пользователя на доступ к байтам документа.
// Инвариант: не более одной pending-заявки на пару (DocumentID, RequesterID).
type DownloadRequest struct {
	ID               string     // Уникальный идентификатор заявки
	DocumentID       string     // Документ, к которому запрошен доступ
	RequesterID      string     // Автор заявки
	RequesterName    string     // Имя автора (join с users)
	ApplicantName    string     // ФИО заявителя
	ApplicantCompany string     // Организация заявителя
	ApplicantContact string     // Контакт заявителя
	Message          string     // Произвольное сообщение владельцу
	Status           string     // pending, approved, rejected
	ApproverID       *string    // Кто принял решение, nil до решения
	CreatedAt        time.Time  // Дата создания
	UpdatedAt        time.Time  // Дата последнего изменения
	ApprovedAt       *time.Time // Момент одобрения
	RejectedAt       *time.Time // Момент отклонения
	ExpiresAt        *time.Time // Конец срока действия одобрения
}

// ActiveAt сообщает, дает ли заявка действующее разрешение на скачивание
// в момент now: статус approved и срок действия не истёк.
func (r *DownloadRequest) ActiveAt(now time.Time) bool {
	if r.Status != RequestStatusApproved {
		return false
	}
	if r.ExpiresAt == nil {
		return true
	}
	return now.Before(*r.ExpiresAt)
}

// DummyDownloadRequest используется для приёма данных заявки из JSON-запроса.
type DummyDownloadRequest struct {
	ApplicantName    string `json:"applicant_name" validate:"required"`    // ФИО заявителя
	ApplicantCompany string `json:"applicant_company" validate:"required"` // Организация
	ApplicantContact string `json:"applicant_contact" validate:"required"` // Контакт
	Message          string `json:"message"`                               // Сообщение (опционально)
}

// DownloadRequestDTO — представление заявки для JSON-ответов.
type DownloadRequestDTO struct {
	ID               string     `json:"id"`
	DocumentID       string     `json:"document_id"`
	RequesterID      string     `json:"requester_id"`
	RequesterName    string     `json:"requester_name,omitempty"`
	ApplicantName    string     `json:"applicant_name"`
	ApplicantCompany string     `json:"applicant_company"`
	ApplicantContact string     `json:"applicant_contact"`
	Message          string     `json:"message"`
	Status           string     `json:"status"`
	ApproverID       *string    `json:"approver_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	RejectedAt       *time.Time `json:"rejected_at,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
}

// ToDTO конвертирует DownloadRequest в DownloadRequestDTO.
func (r *DownloadRequest) ToDTO() DownloadRequestDTO {
	return DownloadRequestDTO{
		ID:               r.ID,
		DocumentID:       r.DocumentID,
		RequesterID:      r.RequesterID,
		RequesterName:    r.RequesterName,
		ApplicantName:    r.ApplicantName,
		ApplicantCompany: r.ApplicantCompany,
		ApplicantContact: r.ApplicantContact,
		Message:          r.Message,
		Status:           r.Status,
		ApproverID:       r.ApproverID,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		ApprovedAt:       r.ApprovedAt,
		RejectedAt:       r.RejectedAt,
		ExpiresAt:        r.ExpiresAt,
	}
}

// RequestEvent — событие жизненного цикла заявки, публикуемое в очередь уведомлений.
type RequestEvent struct {
	Type        string    `json:"type"` // request.created, request.approved, request.rejected
	RequestID   string    `json:"request_id"`
	DocumentID  string    `json:"document_id"`
	RequesterID string    `json:"requester_id"`
	OwnerID     string    `json:"owner_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}
