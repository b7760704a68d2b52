package telegram

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/huntline/phrasehound/internal/domain"
	"github.com/huntline/phrasehound/internal/domain/daterange"
	"github.com/huntline/phrasehound/internal/domain/verdict"
	"github.com/huntline/phrasehound/internal/usecase/search"
)

// Conversation texts. The bot always speaks HTML mode.
const (
	startText = "Привет! Я ищу органику в <b>Telegram</b> по фразам. Нажми /organic."
	helpText  = "Команды: /organic — запустить поиск. Будет запрошен диапазон дат и фразы."

	rangePromptText = "Напиши диапазон дат для поиска.\n" +
		"Форматы: <code>YYYY-MM-DD — YYYY-MM-DD</code> или <code>DD.MM.YYYY - DD.MM.YYYY</code>\n" +
		"Например: <code>2025-10-19 — 2025-10-26</code>"
	badRangeText = "Не понял даты. Пример: <code>2025-10-19 — 2025-10-26</code>"

	noSeedsText     = "Нужна хотя бы одна фраза — по одной на строке."
	cancelledText   = "Отменено. Нажми /organic чтобы начать снова."
	emptyResultText = "По заданным параметрам ничего не найдено."
	oopsText        = "⚠️ Что-то пошло не так, попробуй ещё раз."

	fallbackChannelTitle = "TELEGRAM • Channel"

	cardLeadLimit    = 400
	debugDigestLimit = 4000
)

// htmlEsc covers the three characters Telegram HTML mode cares about.
var htmlEsc = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func esc(s string) string { return htmlEsc.Replace(s) }

// cut shortens s to at most n runes, the ellipsis included.
func cut(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	keep := n - 1
	if keep < 0 {
		keep = 0
	}

	return string([]rune(s)[:keep]) + "…"
}

func seedsPromptText(rng daterange.Range) string {
	return "Диапазон принят: <b>" + esc(rng.String()) + "</b>.\n" +
		"Теперь пришли <b>подводки/фразы</b> — по одной на строке.\n" +
		"Когда закончишь — просто отправь сообщение."
}

func searchingText(rng daterange.Range, seeds int) string {
	return "Запускаю поиск... Это может занять до 1–2 минут при большом количестве источников.\n" +
		"Диапазон: " + esc(rng.String()) + "\n" +
		"Фраз: " + strconv.Itoa(seeds)
}

func searchErrText(err error) string {
	return "⚠️ Ошибка поиска: <code>" + esc(err.Error()) + "</code>"
}

// summaryText is the header message delivered before the result cards.
func summaryText(rng daterange.Range, seeds, matched int) string {
	return "Итоги поиска\n" +
		"Диапазон: <b>" + esc(rng.String()) + "</b>\n" +
		"Фраз: " + strconv.Itoa(seeds) + "\n" +
		"Всего кандидатов: " + strconv.Itoa(matched)
}

// skippedLinesText reports operator lines that normalized to zero tokens.
// Empty when no line was skipped.
func skippedLinesText(errs []error) string {
	nums := make([]string, 0, len(errs))
	for _, err := range errs {
		var le *domain.SeedLineError
		if errors.As(err, &le) {
			nums = append(nums, strconv.Itoa(le.Line))
		}
	}
	if len(nums) == 0 {
		return ""
	}

	return "⚠️ Пропустил строки без слов: " + strings.Join(nums, ", ")
}

// fetchFailuresText lists seeds whose candidate fetch failed entirely.
// Empty when every seed fetched fine.
func fetchFailuresText(fails []search.FetchFailure) string {
	if len(fails) == 0 {
		return ""
	}

	parts := make([]string, 0, len(fails))
	for _, f := range fails {
		parts = append(parts, "<code>"+esc(f.Seed.Raw())+"</code>")
	}

	return "⚠️ Не удалось получить посты по фразам: " + strings.Join(parts, ", ")
}

// resultCard renders one matched post as an HTML card.
func resultCard(ev search.Evaluation, debug bool) string {
	title := ev.Post.ChannelTitle()
	if title == "" {
		title = fallbackChannelTitle
	}

	var b strings.Builder
	b.WriteString("<b>" + esc(title) + "</b>\n")
	b.WriteString(esc(cut(ev.Post.Lead(), cardLeadLimit)))
	b.WriteString("\n\n")

	if link := ev.Post.Link(); link != "" {
		b.WriteString("<a href='" + esc(link) + "'>Открыть пост</a> • ")
	}
	b.WriteString("👀 " + strconv.Itoa(ev.Post.Views()))
	b.WriteString(" • seed: <code>" + esc(ev.Seed.Raw()) + "</code>")
	b.WriteString(" • " + string(ev.Verdict.Kind()))
	if debug {
		b.WriteString(" • " + verdictDetail(ev.Verdict))
	}

	return b.String()
}

// verdictDetail renders the matcher's intermediate number for tuning.
func verdictDetail(v verdict.Verdict) string {
	if v.Kind() == verdict.Exact {
		return "gap=" + strconv.Itoa(v.Gap())
	}
	if v.HasRatio() {
		return "ratio=" + strconv.FormatFloat(v.Ratio(), 'f', 2, 64)
	}

	return "ratio=n/a"
}

// debugDigest renders every evaluated pair, None verdicts included. The raw
// text is cut before escaping so the cut can never split an HTML entity.
func debugDigest(evs []search.Evaluation) string {
	var b strings.Builder
	b.WriteString("verdicts\n")
	for _, ev := range evs {
		b.WriteString(string(ev.Verdict.Kind()))
		b.WriteString(" " + verdictDetail(ev.Verdict))
		b.WriteString(" • " + ev.Seed.Canonical())
		if link := ev.Post.Link(); link != "" {
			b.WriteString(" • " + link)
		} else {
			b.WriteString(" • " + cut(ev.Post.Lead(), 60))
		}
		b.WriteString("\n")
	}

	digest := cut(strings.TrimRight(b.String(), "\n"), debugDigestLimit)

	return "<pre>" + esc(digest) + "</pre>"
}
