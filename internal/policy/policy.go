// Package policy реализует чистые предикаты доступа к документам.
//
// Функции не имеют побочных эффектов и не обращаются к хранилищу:
// решение принимается только по дескриптору документа, действующему
// пользователю и переданному снаружи активному одобрению. Поиск активного
// одобрения — обязанность вызывающего (state machine заявок), что
// удерживает политику свободной от вопросов персистентности.
package policy

import (
	"time"

	"github.com/grigorevv/docvault/internal/models"
)

// MayView сообщает, вправе ли пользователь видеть документ (метаданные и листинг).
//
// Истина для администратора, владельца, публичного документа и документа
// с permission=specific, в allowed_users которого входит пользователь.
func MayView(doc *models.Document, user *models.User) bool {
	if user == nil {
		return false
	}
	if user.IsAdmin() {
		return true
	}
	if doc.OwnerID == user.UID {
		return true
	}
	if doc.Permission == models.PermissionPublic {
		return true
	}
	if doc.Permission == models.PermissionSpecific && doc.IsAllowed(user.UID) {
		return true
	}
	return false
}

// MayEdit сообщает, вправе ли пользователь изменять или удалять документ.
// Правка покрывает notes, permission, allowed_users, download_preauthorized и удаление.
func MayEdit(doc *models.Document, user *models.User) bool {
	if user == nil {
		return false
	}
	if user.IsAdmin() {
		return true
	}
	return doc.OwnerID == user.UID
}

// MayFetchBytes сообщает, вправе ли пользователь получить содержимое документа.
//
// Право на байты строго уже права просмотра: без MayView всегда false,
// и вызывающий обязан вернуть "не найдено", а не предложение подать заявку.
// activeApproval — одобренная неистекшая заявка пары (документ, пользователь),
// найденная вызывающим; nil, если её нет.
func MayFetchBytes(doc *models.Document, user *models.User, activeApproval *models.DownloadRequest, now time.Time) bool {
	if !MayView(doc, user) {
		return false
	}
	if user.IsAdmin() || doc.OwnerID == user.UID {
		return true
	}
	if doc.DownloadPreauthorized {
		return true
	}
	return activeApproval != nil && activeApproval.ActiveAt(now)
}
