package i18n

type entry struct {
	EN string
	RU string
}

// Message keys.
const (
	ErrNotFound           = "error.not_found"
	ErrAlreadyExists      = "error.already_exists"
	ErrValidation         = "error.validation"
	ErrUnauthorized       = "error.unauthorized"
	ErrForbidden          = "error.forbidden"
	ErrInvalidCredentials = "error.invalid_credentials"
	ErrInvalidTransition  = "error.invalid_transition"
	ErrStorage            = "error.storage"
	ErrTooLarge           = "error.too_large"
	ErrRateLimited        = "error.rate_limited"
	ErrInternal           = "error.internal"
	ErrBadRequest         = "error.bad_request"
	ErrDeviceRequired     = "error.device_required"

	MsgSignedOut       = "msg.signed_out"
	MsgPasswordChanged = "msg.password_changed"
	MsgDeleted         = "msg.deleted"
	MsgSaved           = "msg.saved"

	NotifyAppealStatusTitle   = "notify.appeal_status.title"
	NotifyAppealStatusBody    = "notify.appeal_status.body"
	NotifyAppealAssignedTitle = "notify.appeal_assigned.title"
	NotifyAppealAssignedBody  = "notify.appeal_assigned.body"
	NotifyMaintenanceTitle    = "notify.maintenance_due.title"
	NotifyMaintenanceBody     = "notify.maintenance_due.body"
	NotifyRoleGrantedTitle    = "notify.role_granted.title"
	NotifyRoleGrantedBody     = "notify.role_granted.body"
	NotifyNewsTitle           = "notify.news.title"

	StatusPrefix = "appeal.status."
)

var catalog = map[string]entry{
	ErrNotFound:           {"The requested record was not found.", "Запрошенная запись не найдена."},
	ErrAlreadyExists:      {"A record with the same key already exists.", "Запись с таким ключом уже существует."},
	ErrValidation:         {"Some fields are invalid. Please check the form.", "Некоторые поля заполнены неверно. Проверьте форму."},
	ErrUnauthorized:       {"Please sign in to continue.", "Войдите, чтобы продолжить."},
	ErrForbidden:          {"You do not have permission to do this.", "У вас нет прав на это действие."},
	ErrInvalidCredentials: {"Invalid email or password.", "Неверный email или пароль."},
	ErrInvalidTransition:  {"This status change is not allowed.", "Такое изменение статуса недопустимо."},
	ErrStorage:            {"The file could not be stored. Please try again.", "Не удалось сохранить файл. Попробуйте ещё раз."},
	ErrTooLarge:           {"The file is too large.", "Файл слишком большой."},
	ErrRateLimited:        {"Too many requests. Please try again later.", "Слишком много запросов. Попробуйте позже."},
	ErrInternal:           {"Something went wrong. Please try again.", "Что-то пошло не так. Попробуйте ещё раз."},
	ErrBadRequest:         {"The request could not be read.", "Не удалось прочитать запрос."},
	ErrDeviceRequired:     {"The X-Device-ID header is required.", "Требуется заголовок X-Device-ID."},

	MsgSignedOut:       {"Signed out.", "Вы вышли из системы."},
	MsgPasswordChanged: {"Password changed. Other devices were signed out.", "Пароль изменён. Остальные устройства отключены."},
	MsgDeleted:         {"Deleted.", "Удалено."},
	MsgSaved:           {"Saved.", "Сохранено."},

	NotifyAppealStatusTitle:   {"Appeal %s updated", "Обращение %s обновлено"},
	NotifyAppealStatusBody:    {"Your appeal \"%s\" is now: %s.", "Статус вашего обращения «%s»: %s."},
	NotifyAppealAssignedTitle: {"Appeal %s assigned to you", "Вам назначено обращение %s"},
	NotifyAppealAssignedBody:  {"Please review \"%s\".", "Рассмотрите обращение «%s»."},
	NotifyMaintenanceTitle:    {"Maintenance due: %s", "Требуется обслуживание: %s"},
	NotifyMaintenanceBody:     {"Inventory %s is due for maintenance on %s.", "Инвентарный номер %s: обслуживание до %s."},
	NotifyRoleGrantedTitle:    {"Your access has changed", "Ваши права доступа изменены"},
	NotifyRoleGrantedBody:     {"You have been granted the %s role.", "Вам назначена роль: %s."},
	NotifyNewsTitle:           {"News: %s", "Новости: %s"},

	StatusPrefix + "new":         {"new", "новое"},
	StatusPrefix + "in_progress": {"in progress", "в работе"},
	StatusPrefix + "resolved":    {"resolved", "решено"},
	StatusPrefix + "rejected":    {"rejected", "отклонено"},
	StatusPrefix + "closed":      {"closed", "закрыто"},
}
