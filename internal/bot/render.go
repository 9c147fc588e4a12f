package bot

import (
	"context"
	"fmt"
	"time"

	"fotobook/internal/booking"
	"fotobook/internal/catalog"
	"fotobook/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var (
	statusEmojis = map[models.Status]string{
		models.StatusNew:       "🆕",
		models.StatusConfirmed: "✅",
		models.StatusCancelled: "❌",
	}

	statusTexts = map[models.Status]string{
		models.StatusNew:       "Новое",
		models.StatusConfirmed: "Подтверждено",
		models.StatusCancelled: "Отменено",
	}

	daysRu   = []string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}
	monthsRu = []string{"янв", "фев", "мар", "апр", "май", "июн", "июл", "авг", "сен", "окт", "ноя", "дек"}
)

func (b *Bot) sendMainMenu(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "📸 Фотостудия готова к записи!\n\nВыберите действие:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📅 Запись", "booking")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("💵 Прайс", "price")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⭐ Отзывы", "reviews")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📋 Мои записи", "my_bookings")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📸 Галерея", "gallery")),
	)
	_, _ = b.tg.Send(msg)
}

// renderPrompt turns the machine's logical prompt into a message with the
// keyboard valid for that step.
func (b *Bot) renderPrompt(chatID int64, p booking.Prompt) {
	switch p.Kind {
	case booking.PromptPhotographers:
		msg := tgbotapi.NewMessage(chatID, "📅 Запись на фотосессию\n\nВыберите фотографа:")
		msg.ReplyMarkup = photographersKeyboard(p.Photographers, "book_photographer_", "main_menu")
		_, _ = b.tg.Send(msg)
	case booking.PromptDate:
		text := fmt.Sprintf("📅 Выберите дату\n\n📸 Фотограф: %s\n\nИли введите дату в формате YYYY-MM-DD:",
			b.catalog.Name(p.Draft.PhotographerID))
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ReplyMarkup = calendarKeyboard(time.Now())
		_, _ = b.tg.Send(msg)
	case booking.PromptTimeSlots:
		text := fmt.Sprintf("🕐 Выберите время\n\n📅 Дата: %s\n\nДоступные слоты:",
			p.Draft.Date.Format("02.01.2006"))
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ReplyMarkup = slotsKeyboard(p.Slots)
		_, _ = b.tg.Send(msg)
	case booking.PromptConfirm:
		text := fmt.Sprintf(
			"📋 Подтвердите запись:\n\n📸 Фотограф: %s\n📅 Дата: %s\n🕐 Время: %s\n\nНажмите «Подтвердить» для завершения записи.",
			b.catalog.Name(p.Draft.PhotographerID),
			p.Draft.Date.Format("02.01.2006"),
			catalog.SlotLabel(p.Draft.TimeSlot),
		)
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", "book_confirm"),
				tgbotapi.NewInlineKeyboardButtonData("❌ Отменить", "book_cancel"),
			),
		)
		_, _ = b.tg.Send(msg)
	case booking.PromptCommitted:
		text := fmt.Sprintf(
			"✅ Запись #%d успешно создана!\n\n📸 Фотограф: %s\n📅 Дата: %s\n🕐 Время: %s\n\nМы свяжемся с вами для подтверждения.",
			p.AppointmentID,
			b.catalog.Name(p.Draft.PhotographerID),
			p.Draft.Date.Format("02.01.2006"),
			catalog.SlotLabel(p.Draft.TimeSlot),
		)
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ReplyMarkup = backToMainKeyboard()
		_, _ = b.tg.Send(msg)
	case booking.PromptCancelled:
		msg := tgbotapi.NewMessage(chatID, "❌ Запись отменена.")
		msg.ReplyMarkup = backToMainKeyboard()
		_, _ = b.tg.Send(msg)
	}
}

func photographersKeyboard(photographers []catalog.Photographer, prefix, backData string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range photographers {
		label := fmt.Sprintf("📸 %s (%d₽)", p.Name, p.Price)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, prefix+p.ID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", backData),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// calendarKeyboard offers the next seven days, two buttons per row.
func calendarKeyboard(today time.Time) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i := 0; i < 7; i++ {
		date := today.AddDate(0, 0, i)
		label := fmt.Sprintf("%s %d %s", daysRu[int(date.Weekday()+6)%7], date.Day(), monthsRu[date.Month()-1])
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, "book_date_"+date.Format("2006-01-02")))
		if len(row) == 2 || i == 6 {
			rows = append(rows, row)
			row = nil
		}
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", "book_back_to_photographers"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func slotsKeyboard(slots []catalog.Slot) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, s := range slots {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(s.Label, "book_time_"+s.ID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Назад к календарю", "book_back_to_calendar"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func backToMainKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Главное меню", "main_menu"),
		),
	)
}

func (b *Bot) handleMyBookings(ctx context.Context, chatID, userID int64) {
	appts, err := b.db.AppointmentsByUser(ctx, userID)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("list bookings failed")
		b.reply(chatID, "⚠️ Не удалось загрузить записи.")
		return
	}
	if len(appts) == 0 {
		msg := tgbotapi.NewMessage(chatID, "📋 Мои записи\n\n❌ У вас пока нет записей.\n\nХотите записаться?")
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📅 Записаться", "booking")),
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Главное меню", "main_menu")),
		)
		_, _ = b.tg.Send(msg)
		return
	}

	text := "📋 Мои записи:\n\n"
	for _, a := range appts {
		text += fmt.Sprintf(
			"%s Запись #%d\n📸 %s\n📅 %s 🕐 %s\n📊 %s\n\n",
			statusEmojis[a.Status], a.ID, a.PhotographerName,
			a.Date.Format("02.01.2006"), catalog.SlotLabel(a.TimeSlot), statusTexts[a.Status],
		)
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📅 Новая запись", "booking")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Главное меню", "main_menu")),
	)
	_, _ = b.tg.Send(msg)
}

func (b *Bot) sendPriceList(chatID int64) {
	text := "💵 Наши услуги:\n\n"
	for _, p := range b.catalog.Photographers() {
		text += fmt.Sprintf("📸 %s — %d₽\n", p.Name, p.Price)
		for _, style := range p.Styles {
			text += fmt.Sprintf("   • %s\n", style)
		}
	}
	text += "\nВыберите фотографа для записи:"
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📅 Записаться", "booking")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Главное меню", "main_menu")),
	)
	_, _ = b.tg.Send(msg)
}

func (b *Bot) sendGalleryMenu(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "📸 Галерея\n\nВыберите фотографа:")
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range b.catalog.Photographers() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📸 "+p.Name, fmt.Sprintf("gallery_%s_0", p.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Главное меню", "main_menu"),
	))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, _ = b.tg.Send(msg)
}

func (b *Bot) sendGalleryPage(chatID int64, photographerID string, page int) {
	p, err := b.gallery.Load(photographerID)
	if err != nil {
		b.logger.Error().Err(err).Str("photographer", photographerID).Msg("load portfolio failed")
		b.reply(chatID, "⚠️ Не удалось загрузить портфолио.")
		return
	}
	if p == nil || len(p.Photos) == 0 {
		b.reply(chatID, "📸 Портфолио пока пустое.")
		return
	}
	if page < 0 || page >= len(p.Photos) {
		page = 0
	}
	photo := p.Photos[page]

	msg := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(photo.Path))
	msg.Caption = fmt.Sprintf("%s\n\n%s (%d/%d)", photo.Caption, b.catalog.Name(photographerID), page+1, len(p.Photos))
	var nav []tgbotapi.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️", fmt.Sprintf("gallery_%s_%d", photographerID, page-1)))
	}
	if page < len(p.Photos)-1 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("➡️", fmt.Sprintf("gallery_%s_%d", photographerID, page+1)))
	}
	rows := [][]tgbotapi.InlineKeyboardButton{}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Галерея", "gallery"),
	))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, _ = b.tg.Send(msg)
}
