// Package models содержит доменные структуры документа и его дескриптора прав,
// а также вспомогательные типы для работы с данными из внешних источников (JSON-запросы).
package models

import "time"

// Режимы доступа к документу.
const (
	PermissionPublic   = "public"
	PermissionPrivate  = "private"
	PermissionSpecific = "specific"
)

// ValidPermission проверяет, что строка является одним из допустимых режимов доступа.
func ValidPermission(p string) bool {
	return p == PermissionPublic || p == PermissionPrivate || p == PermissionSpecific
}

// Document представляет собой основную модель документа,
// используемую в бизнес-логике и хранилище.
// AllowedUsers имеет смысл только при Permission == specific, иначе пустой.
// DownloadPreauthorized == true снимает требование заявки на скачивание
// для любого пользователя, прошедшего проверку просмотра.
type Document struct {
	ID                    string    // Уникальный идентификатор документа
	Name                  string    // Имя файла
	MimeType              string    // MIME-тип содержимого
	Size                  int64     // Размер содержимого в байтах
	Notes                 string    // Произвольные заметки владельца
	OwnerID               string    // Идентификатор владельца, неизменяем после создания
	OwnerName             string    // Имя владельца (join с users)
	Permission            string    // Режим доступа: public, private, specific
	AllowedUsers          []string  // Идентификаторы пользователей при permission=specific
	DownloadPreauthorized bool      // Разрешение скачивания без заявки
	StorageRelPath        string    // Относительный путь в blob-хранилище
	CreatedAt             time.Time // Дата загрузки
	UpdatedAt             time.Time // Дата последнего изменения
}

// IsAllowed сообщает, входит ли пользователь в список allowed_users.
func (d *Document) IsAllowed(userUID string) bool {
	for _, uid := range d.AllowedUsers {
		if uid == userUID {
			return true
		}
	}
	return false
}

// DummyDocumentUpdate используется для приёма данных PATCH-запроса.
// Указатели отличают отсутствующее поле от пустого значения.
type DummyDocumentUpdate struct {
	Name                  *string  `json:"name,omitempty"`
	Notes                 *string  `json:"notes,omitempty"`
	Permission            *string  `json:"permission,omitempty" validate:"omitempty,oneof=public private specific"`
	AllowedUsers          []string `json:"allowed_users,omitempty" validate:"omitempty,dive,uuid"`
	DownloadPreauthorized *bool    `json:"download_preauthorized,omitempty"`
}

// DocumentDTO — представление документа для JSON-ответов.
// StorageRelPath намеренно не отдается наружу.
type DocumentDTO struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	MimeType              string    `json:"mime_type"`
	Size                  int64     `json:"size"`
	Notes                 string    `json:"notes"`
	OwnerID               string    `json:"owner_id"`
	OwnerName             string    `json:"owner_name"`
	Permission            string    `json:"permission"`
	AllowedUsers          []string  `json:"allowed_users"`
	DownloadPreauthorized bool      `json:"download_preauthorized"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// ToDTO конвертирует Document в DocumentDTO.
func (d *Document) ToDTO() DocumentDTO {
	allowed := d.AllowedUsers
	if allowed == nil {
		allowed = []string{}
	}
	return DocumentDTO{
		ID:                    d.ID,
		Name:                  d.Name,
		MimeType:              d.MimeType,
		Size:                  d.Size,
		Notes:                 d.Notes,
		OwnerID:               d.OwnerID,
		OwnerName:             d.OwnerName,
		Permission:            d.Permission,
		AllowedUsers:          allowed,
		DownloadPreauthorized: d.DownloadPreauthorized,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}
}
