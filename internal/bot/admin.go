package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"sort"
	"strings"

	"fotobook/internal/catalog"
	"fotobook/internal/db"
	"fotobook/internal/events"
	"fotobook/internal/export"
	"fotobook/internal/metrics"
	"fotobook/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var daysRuFull = []string{"Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота", "Воскресенье"}

// handleAdminCalendar shows every appointment grouped by date, with
// decision buttons for the ones still pending.
func (b *Bot) handleAdminCalendar(ctx context.Context, msg *tgbotapi.Message) {
	if err := b.authorizeAdmin(msg.From.ID); err != nil {
		b.reply(msg.Chat.ID, "❌ У вас нет прав администратора!")
		return
	}

	appts, err := b.db.AllAppointments(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("admin calendar load failed")
		b.reply(msg.Chat.ID, "⚠️ Не удалось загрузить записи.")
		return
	}
	if len(appts) == 0 {
		b.reply(msg.Chat.ID, "📅 Календарь записей\n\n❌ Нет записей")
		return
	}

	byDate := make(map[string][]models.Appointment)
	for _, a := range appts {
		byDate[a.DateText()] = append(byDate[a.DateText()], a)
	}
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	text := "📅 Календарь записей\n\n"
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, d := range dates {
		day := byDate[d][0].Date
		text += fmt.Sprintf("📅 %s (%s)\n", day.Format("02.01.2006"), daysRuFull[int(day.Weekday()+6)%7])
		for _, a := range byDate[d] {
			text += fmt.Sprintf("  %s #%d %s — %s\n     👤 %s\n",
				statusEmojis[a.Status], a.ID, catalog.SlotLabel(a.TimeSlot), a.PhotographerName, a.UserName)
			if a.Status == models.StatusNew {
				rows = append(rows, tgbotapi.NewInlineKeyboardRow(
					tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ #%d", a.ID), fmt.Sprintf("admin_confirm_%d", a.ID)),
					tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("❌ #%d", a.ID), fmt.Sprintf("admin_cancel_%d", a.ID)),
				))
			}
		}
		text += "\n"
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	if len(rows) > 0 {
		out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	_, _ = b.tg.Send(out)
}

// handleAdminDecision applies confirm/cancel to a pending appointment.
// Finalized appointments are left untouched.
func (b *Bot) handleAdminDecision(ctx context.Context, chatID, userID, apptID int64, status models.Status) {
	if err := b.authorizeAdmin(userID); err != nil {
		b.reply(chatID, "❌ У вас нет прав администратора!")
		return
	}

	err := b.db.UpdateAppointmentStatus(ctx, apptID, status)
	switch {
	case errors.Is(err, db.ErrNotFound):
		b.reply(chatID, fmt.Sprintf("❌ Запись #%d не найдена.", apptID))
		return
	case errors.Is(err, db.ErrAlreadyFinalized):
		b.reply(chatID, fmt.Sprintf("⚠️ Запись #%d уже обработана, статус не изменён.", apptID))
		return
	case err != nil:
		b.logger.Error().Err(err).Int64("appointment_id", apptID).Msg("status update failed")
		b.reply(chatID, "⚠️ Не удалось обновить статус.")
		return
	}

	metrics.IncAdminDecision(string(status))
	b.reply(chatID, fmt.Sprintf("%s Запись #%d: %s.", statusEmojis[status], apptID, statusTexts[status]))

	// Notify the booking owner, best-effort via the event bus.
	if b.events != nil {
		if appt, err := b.db.AppointmentByID(ctx, apptID); err == nil {
			b.events.Publish(events.BookingStatusChanged, appt)
		}
	}
}

// handleAdminExport sends the full ledger as an XLSX document.
func (b *Bot) handleAdminExport(ctx context.Context, msg *tgbotapi.Message) {
	if err := b.authorizeAdmin(msg.From.ID); err != nil {
		b.reply(msg.Chat.ID, "❌ У вас нет прав администратора!")
		return
	}

	appts, err := b.db.AllAppointments(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("export load failed")
		b.reply(msg.Chat.ID, "⚠️ Не удалось загрузить записи.")
		return
	}

	var buf bytes.Buffer
	if err := export.WriteAppointmentsXLSX(&buf, appts); err != nil {
		b.logger.Error().Err(err).Msg("xlsx export failed")
		b.reply(msg.Chat.ID, "⚠️ Не удалось сформировать файл.")
		return
	}

	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{
		Name:  "appointments.xlsx",
		Bytes: buf.Bytes(),
	})
	_, _ = b.tg.Send(doc)
}

// handleAdminSync pushes active appointments into the configured Google
// Sheet.
func (b *Bot) handleAdminSync(ctx context.Context, msg *tgbotapi.Message) {
	if err := b.authorizeAdmin(msg.From.ID); err != nil {
		b.reply(msg.Chat.ID, "❌ У вас нет прав администратора!")
		return
	}
	if b.sheets == nil {
		b.reply(msg.Chat.ID, "⚠️ Экспорт в Google Sheets не настроен.")
		return
	}

	appts, err := b.db.AllAppointments(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("sheets sync load failed")
		b.reply(msg.Chat.ID, "⚠️ Не удалось загрузить записи.")
		return
	}
	if err := b.sheets.Sync(ctx, appts); err != nil {
		b.logger.Error().Err(err).Msg("sheets sync failed")
		b.reply(msg.Chat.ID, "⚠️ Не удалось синхронизировать таблицу.")
		return
	}
	b.reply(msg.Chat.ID, "✅ Таблица обновлена.")
}

// handleAdminAddPhoto arms the portfolio upload: the admin's next photo
// message is stored for the named photographer.
func (b *Bot) handleAdminAddPhoto(msg *tgbotapi.Message) {
	if err := b.authorizeAdmin(msg.From.ID); err != nil {
		b.reply(msg.Chat.ID, "❌ У вас нет прав администратора!")
		return
	}

	args := strings.SplitN(msg.Text, " ", 3)
	if len(args) < 3 {
		b.reply(msg.Chat.ID,
			"📋 Использование команды:\n/admin_add_photo <photographer_id> <подпись>\n\nПример:\n/admin_add_photo anna Портретная фотосессия в студии")
		return
	}
	photographerID, caption := args[1], args[2]
	p, ok := b.catalog.Photographer(photographerID)
	if !ok {
		b.reply(msg.Chat.ID, fmt.Sprintf("❌ Фотограф '%s' не найден!", photographerID))
		return
	}

	b.pendingPhotos.set(msg.From.ID, pendingPhoto{PhotographerID: photographerID, Caption: caption})
	b.reply(msg.Chat.ID, fmt.Sprintf("📸 Готов к загрузке фото для %s\n📝 Подпись: %s\n\nОтправьте фото...", p.Name, caption))
}

// handleAdminPhoto captures the announced upload.
func (b *Bot) handleAdminPhoto(_ context.Context, msg *tgbotapi.Message) {
	pending, ok := b.pendingPhotos.take(msg.From.ID)
	if !ok {
		return
	}
	if len(msg.Photo) == 0 {
		return
	}
	// The last size is the largest rendition.
	photo := msg.Photo[len(msg.Photo)-1]

	url, err := b.tg.GetFileDirectURL(photo.FileID)
	if err != nil {
		b.logger.Error().Err(err).Msg("photo url failed")
		b.reply(msg.Chat.ID, "❌ Ошибка при сохранении фото.")
		return
	}
	data, ext, err := downloadFile(url)
	if err != nil {
		b.logger.Error().Err(err).Msg("photo download failed")
		b.reply(msg.Chat.ID, "❌ Ошибка при сохранении фото.")
		return
	}

	saved, err := b.gallery.Add(pending.PhotographerID, b.catalog.Name(pending.PhotographerID), ext, data, pending.Caption)
	if err != nil {
		b.logger.Error().Err(err).Msg("portfolio update failed")
		b.reply(msg.Chat.ID, "❌ Ошибка при сохранении фото.")
		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf(
		"✅ Фото успешно добавлено!\n\n👤 Фотограф: %s\n📝 Подпись: %s\n📁 Путь: %s",
		b.catalog.Name(pending.PhotographerID), pending.Caption, saved.Path))
}

func downloadFile(url string) (data []byte, ext string, err error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download status %d", resp.StatusCode)
	}
	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	ext = strings.TrimPrefix(path.Ext(url), ".")
	if ext == "" {
		ext = "jpg"
	}
	return data, ext, nil
}
