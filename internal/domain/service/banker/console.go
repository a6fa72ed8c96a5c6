package banker

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"git.appkode.ru/pub/go/failure"
	"github.com/benbjohnson/clock"
	"github.com/rs/xid"
	"github.com/samber/lo"

	"garthbid/internal/domain"
	"garthbid/internal/domain/entity"
	"garthbid/internal/domain/service/timer"
	"garthbid/internal/domain/value"
	"garthbid/pkg/contextx"
	"garthbid/pkg/errcodes"
	"garthbid/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	DefaultNudgeStep = 0.1

	opUndo     = "undo"
	opBeatBest = "beat_best"
)

type Metrics interface {
	BankerAction(action string)
	BankerRejected(op string, code failure.ErrorCode)
}

type nopMetrics struct{}

func (nopMetrics) BankerAction(string)                      {}
func (nopMetrics) BankerRejected(string, failure.ErrorCode) {}

// Filter сужает очередь. Пустая категория подходит под любую.
type Filter struct {
	Category string           `json:"category"`
	Risk     value.RiskFilter `json:"risk"`
}

func (f Filter) matches(item entity.BankerItem) bool {
	if f.Category != "" && !strings.EqualFold(f.Category, item.Category) {
		return false
	}

	switch f.Risk {
	case value.RiskFilterClean:
		return !item.Flags.Any()
	case value.RiskFilterFlagged:
		return item.Flags.Any()
	default:
		return true
	}
}

// OfferTerms — условия своего предложения, введённые оператором.
type OfferTerms struct {
	APR        float64
	TermMonths int
}

// Decision — зафиксированный результат одного действия.
type Decision struct {
	Item        entity.BankerItem       `json:"item"`
	Action      value.Action            `json:"action"`
	State       entity.ItemState        `json:"state"`
	Offer       *entity.BankerOffer     `json:"offer,omitempty"`
	Rank        int                     `json:"rank,omitempty"`
	Competitors []entity.CompetingOffer `json:"competitors,omitempty"`
}

// SwipeResult — либо решение, либо ожидающее подтверждение риска.
type SwipeResult struct {
	Decision          *Decision          `json:"decision,omitempty"`
	NeedsConfirmation bool               `json:"needsConfirmation"`
	ItemID            string             `json:"itemId,omitempty"`
	Action            value.Action       `json:"action,omitempty"`
	RiskReasons       []value.RiskReason `json:"riskReasons,omitempty"`
}

// UndoResult — что было отменено. Undone false при пустом журнале.
type UndoResult struct {
	Undone bool              `json:"undone"`
	Entry  *entity.ActionLog `json:"entry,omitempty"`
}

type KeyResult struct {
	Handled bool         `json:"handled"`
	Swipe   *SwipeResult `json:"swipe,omitempty"`
	Undo    *UndoResult  `json:"undo,omitempty"`
}

type Standing struct {
	ItemID           string                  `json:"itemId"`
	Offer            *entity.BankerOffer     `json:"offer,omitempty"`
	MyRank           int                     `json:"myRank"`
	Competitors      []entity.CompetingOffer `json:"competitors"`
	BestCompetingAPR float64                 `json:"bestCompetingApr"`
}

type Stats struct {
	Total     int `json:"total"`
	Unseen    int `json:"unseen"`
	Passed    int `json:"passed"`
	NeedsInfo int `json:"needsInfo"`
	Offered   int `json:"offered"`
	Remaining int `json:"remaining"`
}

// Overview — всё, что экран очереди показывает за раз.
type Overview struct {
	Current      *entity.BankerItem   `json:"current,omitempty"`
	Next         *entity.BankerItem   `json:"next,omitempty"`
	Stats        Stats                `json:"stats"`
	Filter       Filter               `json:"filter"`
	Template     entity.OfferTemplate `json:"template"`
	Nudge        float64              `json:"nudge"`
	EffectiveAPR float64              `json:"effectiveApr"`
	Pending      *SwipeResult         `json:"pending,omitempty"`
	Lock         LockStatus           `json:"lock"`
}

type pendingRisk struct {
	itemID string
	action value.Action
	custom *OfferTerms
}

// Console — очередь предложений банкира. Владеет State: читатели берут
// опубликованный State без блокировки, писатели идут через mu.
type Console struct {
	mu    sync.Mutex
	state atomic.Pointer[State]

	items     []entity.BankerItem
	itemsByID map[string]entity.BankerItem
	templates []entity.OfferTemplate
	byID      map[string]entity.OfferTemplate

	clock     clock.Clock
	lock      *LockClock
	selector  *CompetitionSelector
	newID     func() string
	metrics   Metrics
	snapshots SnapshotStore
	nudgeStep float64

	filter     Filter
	templateID string
	nudge      float64
	pending    *pendingRisk
}

func NewConsole(items []entity.BankerItem, clk clock.Clock, lock *LockClock) *Console {
	items = lo.UniqBy(items, func(item entity.BankerItem) string { return item.ID })
	templates := DefaultTemplates()

	c := &Console{
		items:      items,
		itemsByID:  lo.KeyBy(items, func(item entity.BankerItem) string { return item.ID }),
		templates:  templates,
		byID:       templatesByID(templates),
		clock:      clk,
		lock:       lock,
		selector:   NewCompetitionSelector(DefaultCompetingCacheTTL),
		newID:      func() string { return xid.New().String() },
		metrics:    nopMetrics{},
		nudgeStep:  DefaultNudgeStep,
		filter:     Filter{Risk: value.RiskFilterAll},
		templateID: TemplateStandard,
	}

	initial := NewState()
	c.state.Store(&initial)

	return c
}

func (c *Console) WithSelector(s *CompetitionSelector) *Console {
	c.selector = s
	return c
}

func (c *Console) WithMetrics(m Metrics) *Console {
	c.metrics = m
	return c
}

func (c *Console) WithIDGenerator(newID func() string) *Console {
	c.newID = newID
	return c
}

func (c *Console) WithSnapshots(store SnapshotStore) *Console {
	c.snapshots = store
	return c
}

func (c *Console) WithNudgeStep(step float64) *Console {
	if step > 0 {
		c.nudgeStep = step
	}
	return c
}

// State возвращает глубокую копию опубликованного состояния.
func (c *Console) State() State {
	return c.state.Load().Clone()
}

func (c *Console) Items() []entity.BankerItem {
	return append([]entity.BankerItem(nil), c.items...)
}

func (c *Console) Item(id string) (entity.BankerItem, error) {
	item, ok := c.itemsByID[id]
	if !ok {
		return entity.BankerItem{}, domain.Errorf(domain.KindNotFound, ErrItemNotFound.Code, "item %s not found", id)
	}
	return item, nil
}

func (c *Console) IsLocked() bool {
	return c.lock.IsLocked(c.clock.Now())
}

func (c *Console) LockStatus() LockStatus {
	return c.lock.Status(c.clock.Now())
}

// WatchLock отдаёт статус блокировки каждые interval, пока fn не вернёт
// false или не отменят ctx.
func (c *Console) WatchLock(ctx context.Context, interval time.Duration, fn func(LockStatus) bool) {
	timer.Poll(ctx, c.clock, interval, func(now time.Time) bool {
		return fn(c.lock.Status(now))
	})
}

// Queue — нерешённые лоты под активным фильтром. Текущий лот всегда
// первый.
func (c *Console) Queue() []entity.BankerItem {
	c.mu.Lock()
	filter := c.filter
	c.mu.Unlock()

	return c.queue(*c.state.Load(), filter)
}

func (c *Console) queue(s State, filter Filter) []entity.BankerItem {
	return lo.Filter(c.items, func(item entity.BankerItem, _ int) bool {
		return s.StatusOf(item.ID) == value.ItemStatusUnseen && filter.matches(item)
	})
}

func (c *Console) CurrentItem() (entity.BankerItem, bool) {
	return head(c.Queue(), 0)
}

func (c *Console) NextItem() (entity.BankerItem, bool) {
	return head(c.Queue(), 1)
}

func (c *Console) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

func (c *Console) SetFilter(ctx context.Context, f Filter) error {
	risk, err := value.ParseRiskFilter(string(f.Risk))
	if err != nil {
		return domain.WrapError(err, domain.KindInvalidArgument, errcodes.InvalidRiskFilter, "invalid risk filter")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.filter = Filter{Category: strings.TrimSpace(f.Category), Risk: risk}

	logger(ctx).Info("banker filter changed",
		slog.String("category", c.filter.Category),
		slog.String("risk", string(c.filter.Risk)),
	)

	return nil
}

func (c *Console) Templates() []entity.OfferTemplate {
	return lo.Map(c.templates, func(t entity.OfferTemplate, _ int) entity.OfferTemplate {
		return c.byID[t.ID]
	})
}

func (c *Console) Template() entity.OfferTemplate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byID[c.templateID]
}

func (c *Console) SetTemplate(ctx context.Context, id string) error {
	if _, ok := c.byID[id]; !ok {
		return domain.Errorf(domain.KindInvalidArgument, ErrUnknownTemplate.Code, "unknown offer template %q", id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.templateID = id

	logger(ctx).Info("banker template changed", slog.String("template", id))

	return nil
}

func (c *Console) NudgeStep() float64 {
	return c.nudgeStep
}

func (c *Console) Nudge() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nudge
}

// NudgeAPR сдвигает APR шаблона только для следующего предложения.
// Возвращает итоговый APR, ноль и ниже не допускаются.
func (c *Console) NudgeAPR(ctx context.Context, delta float64) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	nudge := roundAPR(c.nudge + delta)
	effective := roundAPR(c.byID[c.templateID].BaseAPR + nudge)

	if effective < minAPR || effective > maxAPR {
		return 0, domain.Errorf(domain.KindInvalidArgument, ErrInvalidOfferTerms.Code,
			"effective APR %.2f out of range [%.2f, %.2f]", effective, minAPR, maxAPR)
	}

	c.nudge = nudge

	logger(ctx).Debug("banker apr nudged", slog.Float64("nudge", nudge), slog.Float64("apr", effective))

	return effective, nil
}

func (c *Console) Overview() Overview {
	st := *c.state.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	queue := c.queue(st, c.filter)
	tpl := c.byID[c.templateID]

	ov := Overview{
		Stats:        c.stats(st, len(queue)),
		Filter:       c.filter,
		Template:     tpl,
		Nudge:        c.nudge,
		EffectiveAPR: roundAPR(tpl.BaseAPR + c.nudge),
		Pending:      c.pendingResult(),
		Lock:         c.lock.Status(c.clock.Now()),
	}

	if item, ok := head(queue, 0); ok {
		ov.Current = &item
	}
	if item, ok := head(queue, 1); ok {
		ov.Next = &item
	}

	return ov
}

// ExecuteAction применяет действие к текущему лоту. Предложение по лоту с
// флагами требует confirmedRisk, custom учитывается только для custom_offer.
func (c *Console) ExecuteAction(ctx context.Context, action value.Action, confirmedRisk bool, custom *OfferTerms) (Decision, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkUnlocked(ctx, action.String()); err != nil {
		return Decision{}, err
	}

	if _, err := value.ParseAction(action.String()); err != nil {
		return Decision{}, c.reject(ctx, action.String(), "",
			domain.WrapError(err, domain.KindInvalidArgument, ErrInvalidAction.Code, "invalid action"))
	}

	item, ok := head(c.queue(*c.state.Load(), c.filter), 0)
	if !ok {
		return Decision{}, c.reject(ctx, action.String(), "", ErrQueueEmpty)
	}

	return c.execute(ctx, item, action, confirmedRisk, custom)
}

// Swipe переводит жест в действие над текущим лотом. Предложение по лоту с
// флагами не фиксируется, вместо этого ждём подтверждения.
func (c *Console) Swipe(ctx context.Context, direction value.Direction, custom *OfferTerms) (SwipeResult, error) {
	action, ok := direction.Action()
	if !ok {
		return SwipeResult{}, domain.Errorf(domain.KindInvalidArgument, errcodes.InvalidDirection, "unknown direction %q", direction)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.decide(ctx, action, custom)
}

// HandleKey обрабатывает горячую клавишу. Неизвестная клавиша не ошибка.
func (c *Console) HandleKey(ctx context.Context, key string, meta, ctrl bool) (KeyResult, error) {
	if IsUndoShortcut(key, meta, ctrl) {
		res, err := c.Undo(ctx)
		if err != nil {
			return KeyResult{}, err
		}
		return KeyResult{Handled: true, Undo: &res}, nil
	}

	if meta || ctrl {
		return KeyResult{}, nil
	}

	action, ok := ActionForKey(key)
	if !ok {
		return KeyResult{}, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.decide(ctx, action, nil)
	if err != nil {
		return KeyResult{}, err
	}

	return KeyResult{Handled: true, Swipe: &res}, nil
}

// ConfirmHighRisk фиксирует отложенное предложение, если лот всё ещё текущий.
func (c *Console) ConfirmHighRisk(ctx context.Context) (Decision, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkUnlocked(ctx, "confirm_risk"); err != nil {
		return Decision{}, err
	}

	pending := c.pending
	if pending == nil {
		return Decision{}, c.reject(ctx, "confirm_risk", "", ErrNoPendingConfirmation)
	}

	item, ok := head(c.queue(*c.state.Load(), c.filter), 0)
	if !ok || item.ID != pending.itemID {
		c.pending = nil
		return Decision{}, c.reject(ctx, "confirm_risk", pending.itemID,
			domain.Errorf(domain.KindConflict, ErrNoPendingConfirmation.Code, "item %s is no longer current", pending.itemID))
	}

	return c.execute(ctx, item, pending.action, true, pending.custom)
}

// CancelHighRisk сбрасывает ожидающее подтверждение. Возвращает, было ли оно.
func (c *Console) CancelHighRisk(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		return false
	}

	logger(ctx).Info("banker risk confirmation cancelled", slog.String(logx.FieldItemID, c.pending.itemID))
	c.pending = nil

	return true
}

func (c *Console) Pending() *SwipeResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingResult()
}

// Undo отменяет последнее действие. Пустой журнал не ошибка.
func (c *Console) Undo(ctx context.Context) (UndoResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkUnlocked(ctx, opUndo); err != nil {
		return UndoResult{}, err
	}

	next, entry, ok := c.state.Load().revert()
	if !ok {
		logger(ctx).Debug("banker undo with empty log")
		return UndoResult{Undone: false}, nil
	}

	c.publish(ctx, next)
	c.pending = nil
	c.metrics.BankerAction(opUndo)

	logger(ctx).Info("banker action undone",
		slog.String(logx.FieldItemID, entry.ItemID),
		slog.String(logx.FieldAction, entry.Action.String()),
	)

	return UndoResult{Undone: true, Entry: &entry}, nil
}

// BeatBest переоценивает живое предложение чуть ниже лучшего конкурента.
// Старое предложение пишется в журнал, undo вернёт его как было. Если
// предложение уже не хуже цели, ничего не меняется.
func (c *Console) BeatBest(ctx context.Context, itemID string) (Decision, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkUnlocked(ctx, opBeatBest); err != nil {
		return Decision{}, err
	}

	item, err := c.Item(itemID)
	if err != nil {
		return Decision{}, c.reject(ctx, opBeatBest, itemID, err)
	}

	st := *c.state.Load()

	prevState, hasState := st.ItemStates[itemID]
	prevOffer, hasOffer := st.Offers[itemID]

	if !hasState || !hasOffer || prevState.Status != value.ItemStatusOffered {
		return Decision{}, c.reject(ctx, opBeatBest, itemID,
			domain.Errorf(domain.KindConflict, ErrItemNotOffered.Code, "item %s has no live offer", itemID))
	}

	if item.Flags.Any() && !prevState.ConfirmedHighRisk {
		return Decision{}, c.reject(ctx, opBeatBest, itemID, ErrRiskConfirmationRequired)
	}

	competitors := c.selector.Competitors(itemID)

	best, ok := BestCompetingAPR(competitors)
	if !ok {
		return Decision{}, c.reject(ctx, opBeatBest, itemID,
			domain.Errorf(domain.KindConflict, ErrInvalidOfferTerms.Code, "item %s has no competing offers", itemID))
	}

	target := BeatBestAPR(best)
	if prevOffer.APR <= target {
		return Decision{}, c.reject(ctx, opBeatBest, itemID,
			domain.Errorf(domain.KindConflict, ErrOfferAlreadyBest.Code, "offer %s at %.2f%% already beats %.2f%%", prevOffer.ID, prevOffer.APR, best))
	}

	now := c.clock.Now()

	offer := prevOffer
	offer.APR = target
	offer.UpdatedAt = now

	next := prevState.Clone()
	next.LastUpdatedAt = now

	entry := entity.ActionLog{
		ID:            c.newID(),
		ItemID:        itemID,
		Action:        value.ActionOffer,
		Timestamp:     now,
		PreviousState: &prevState,
		NewState:      next,
		PreviousOffer: &prevOffer,
	}

	c.publish(ctx, st.commit(itemID, next, &offer, entry))
	c.metrics.BankerAction(opBeatBest)

	rank := CalculateMyRank(asCompeting(offer), competitors)

	logger(ctx).Info("banker offer repriced to beat best",
		slog.String(logx.FieldItemID, itemID),
		slog.String(logx.FieldOfferID, offer.ID),
		slog.Float64("best-apr", best),
		slog.Float64("apr", offer.APR),
		slog.Int(logx.FieldRank, rank),
	)

	return Decision{
		Item:        item,
		Action:      value.ActionOffer,
		State:       next,
		Offer:       &offer,
		Rank:        rank,
		Competitors: competitors,
	}, nil
}

// Standing — текущее место моего предложения среди конкурентов.
func (c *Console) Standing(itemID string) (Standing, error) {
	if _, err := c.Item(itemID); err != nil {
		return Standing{}, err
	}

	competitors := c.selector.Competitors(itemID)
	best, _ := BestCompetingAPR(competitors)

	standing := Standing{
		ItemID:           itemID,
		Competitors:      competitors,
		BestCompetingAPR: best,
	}

	if offer, ok := c.state.Load().Offers[itemID]; ok {
		standing.Offer = &offer
		standing.MyRank = CalculateMyRank(asCompeting(offer), competitors)
		standing.Competitors = Rank(append([]entity.CompetingOffer{*asCompeting(offer)}, competitors...))
	}

	return standing, nil
}

func (c *Console) Stats() Stats {
	st := *c.state.Load()

	c.mu.Lock()
	filter := c.filter
	c.mu.Unlock()

	return c.stats(st, len(c.queue(st, filter)))
}

func (c *Console) stats(st State, remaining int) Stats {
	stats := Stats{Total: len(c.items), Remaining: remaining}

	for _, item := range c.items {
		switch st.StatusOf(item.ID) {
		case value.ItemStatusPassed:
			stats.Passed++
		case value.ItemStatusNeedsInfo:
			stats.NeedsInfo++
		case value.ItemStatusOffered:
			stats.Offered++
		default:
			stats.Unseen++
		}
	}

	return stats
}

// decide выполняет действие, выбранное жестом или клавишей. Вызывается под mu.
func (c *Console) decide(ctx context.Context, action value.Action, custom *OfferTerms) (SwipeResult, error) {
	if err := c.checkUnlocked(ctx, action.String()); err != nil {
		return SwipeResult{}, err
	}

	item, ok := head(c.queue(*c.state.Load(), c.filter), 0)
	if !ok {
		return SwipeResult{}, c.reject(ctx, action.String(), "", ErrQueueEmpty)
	}

	if action.CreatesOffer() && item.Flags.Any() {
		c.pending = &pendingRisk{itemID: item.ID, action: action, custom: custom}

		logger(ctx).Info("banker risk confirmation armed",
			slog.String(logx.FieldItemID, item.ID),
			slog.String(logx.FieldAction, action.String()),
		)

		return *c.pendingResult(), nil
	}

	decision, err := c.execute(ctx, item, action, false, custom)
	if err != nil {
		return SwipeResult{}, err
	}

	return SwipeResult{Decision: &decision, ItemID: item.ID, Action: action}, nil
}

// execute — единственное место фиксации решения. Вызывается под mu после
// проверки блокировки.
func (c *Console) execute(
	ctx context.Context,
	item entity.BankerItem,
	action value.Action,
	confirmedRisk bool,
	custom *OfferTerms,
) (Decision, error) {
	if action.CreatesOffer() && item.Flags.Any() && !confirmedRisk {
		return Decision{}, c.reject(ctx, action.String(), item.ID,
			domain.Errorf(domain.KindUnprocessable, ErrRiskConfirmationRequired.Code,
				"item %s is flagged %v and needs risk confirmation", item.ID, item.Flags.Reasons()))
	}

	st := *c.state.Load()
	now := c.clock.Now()

	var offer *entity.BankerOffer

	if action.CreatesOffer() {
		built, err := c.buildOffer(item.ID, action, custom, now)
		if err != nil {
			return Decision{}, c.reject(ctx, action.String(), item.ID, err)
		}
		offer = &built
	} else if custom != nil {
		return Decision{}, c.reject(ctx, action.String(), item.ID,
			domain.Errorf(domain.KindInvalidArgument, ErrInvalidOfferTerms.Code, "%s takes no offer terms", action))
	}

	next := entity.ItemState{
		Status:            action.ResultingStatus(),
		RiskReasons:       item.Flags.Reasons(),
		ConfirmedHighRisk: confirmedRisk && item.Flags.Any(),
		LastUpdatedAt:     now,
	}
	if offer != nil {
		next.MyOfferID = offer.ID
	}

	entry := entity.ActionLog{
		ID:        c.newID(),
		ItemID:    item.ID,
		Action:    action,
		Timestamp: now,
		NewState:  next,
	}
	if prev, ok := st.ItemStates[item.ID]; ok {
		entry.PreviousState = &prev
	}
	if prev, ok := st.Offers[item.ID]; ok {
		entry.PreviousOffer = &prev
	}

	c.publish(ctx, st.commit(item.ID, next, offer, entry))
	c.nudge = 0
	c.pending = nil
	c.metrics.BankerAction(action.String())

	decision := Decision{Item: item, Action: action, State: next, Offer: offer}

	attrs := []any{
		slog.String(logx.FieldItemID, item.ID),
		slog.String(logx.FieldAction, action.String()),
		slog.Bool("confirmed-risk", next.ConfirmedHighRisk),
	}

	if offer != nil {
		decision.Competitors = c.selector.Competitors(item.ID)
		decision.Rank = CalculateMyRank(asCompeting(*offer), decision.Competitors)

		attrs = append(attrs,
			slog.String(logx.FieldOfferID, offer.ID),
			slog.Float64("apr", offer.APR),
			slog.Int("term-months", offer.TermMonths),
			slog.Int(logx.FieldRank, decision.Rank),
		)
	}

	logger(ctx).Info("banker action committed", attrs...)

	return decision, nil
}

func (c *Console) buildOffer(itemID string, action value.Action, custom *OfferTerms, now time.Time) (entity.BankerOffer, error) {
	tpl := c.byID[c.templateID]

	apr := roundAPR(tpl.BaseAPR + c.nudge)
	term := tpl.TermMonths

	if custom != nil {
		if action != value.ActionCustomOffer {
			return entity.BankerOffer{}, domain.Errorf(domain.KindInvalidArgument, ErrInvalidOfferTerms.Code,
				"custom terms need the %s action", value.ActionCustomOffer)
		}

		apr = roundAPR(custom.APR)
		term = custom.TermMonths
	}

	if apr < minAPR || apr > maxAPR {
		return entity.BankerOffer{}, domain.Errorf(domain.KindInvalidArgument, ErrInvalidOfferTerms.Code,
			"APR %.2f out of range [%.2f, %.2f]", apr, minAPR, maxAPR)
	}

	if !tpl.AllowsTerm(term) {
		return entity.BankerOffer{}, domain.Errorf(domain.KindInvalidArgument, ErrInvalidOfferTerms.Code,
			"term %d months is not allowed by template %s, want one of %v", term, tpl.ID, tpl.AllowedTerms)
	}

	return entity.BankerOffer{
		ID:         c.newID(),
		ItemID:     itemID,
		APR:        apr,
		TermMonths: term,
		TemplateID: tpl.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// checkUnlocked идёт первым в каждой мутации.
func (c *Console) checkUnlocked(ctx context.Context, op string) error {
	if now := c.clock.Now(); c.lock.IsLocked(now) {
		return c.reject(ctx, op, "", domain.Errorf(domain.KindLocked, ErrLocked.Code,
			"banker actions are locked until %s", c.lock.Status(now).unlockTime()))
	}
	return nil
}

func (c *Console) reject(ctx context.Context, op, itemID string, err error) error {
	code, _ := domain.GetCode(err)
	c.metrics.BankerRejected(op, code)

	logger(ctx).Warn("banker action rejected",
		slog.String(logx.FieldAction, op),
		slog.String(logx.FieldItemID, itemID),
		logx.Error(err),
	)

	return err
}

func (c *Console) pendingResult() *SwipeResult {
	if c.pending == nil {
		return nil
	}

	item := c.itemsByID[c.pending.itemID]

	return &SwipeResult{
		NeedsConfirmation: true,
		ItemID:            item.ID,
		Action:            c.pending.action,
		RiskReasons:       item.Flags.Reasons(),
	}
}

func (s LockStatus) unlockTime() string {
	if s.UnlocksAt == nil {
		return "the override is lifted"
	}
	return s.UnlocksAt.Format(time.RFC3339)
}

func head(items []entity.BankerItem, i int) (entity.BankerItem, bool) {
	if i < 0 || i >= len(items) {
		return entity.BankerItem{}, false
	}
	return items[i], true
}

// ActionForKey: p, o, s, c.
func ActionForKey(key string) (value.Action, bool) {
	switch strings.ToLower(key) {
	case "p":
		return value.ActionPass, true
	case "o":
		return value.ActionOffer, true
	case "s":
		return value.ActionNeedsInfo, true
	case "c":
		return value.ActionCustomOffer, true
	default:
		return "", false
	}
}

// IsUndoShortcut — Cmd+Z или Ctrl+Z.
func IsUndoShortcut(key string, meta, ctrl bool) bool {
	return strings.EqualFold(key, "z") && (meta || ctrl)
}
