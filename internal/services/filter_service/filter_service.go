package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/lib/logger/sl"
	"portfolio_gallery/internal/lib/sanitize"
	"portfolio_gallery/internal/lib/slug"
	"portfolio_gallery/internal/repository"

	"github.com/samber/lo"
)

const DefaultColor = "#3498db"

// FilterService реестр фильтров: плоский список с указателями на родителя.
// После каждого изменения обновляется карта {id: name} для старых шаблонов.
type FilterService struct {
	log   *slog.Logger
	store repository.FilterRegistryStore
}

func NewFilterService(log *slog.Logger, store repository.FilterRegistryStore) *FilterService {
	return &FilterService{
		log:   log,
		store: store,
	}
}

func (s *FilterService) List(ctx context.Context) ([]models.Filter, error) {
	const op = "service.FilterService.List"

	filters, err := s.store.Filters(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return filters, nil
}

// Tree строит лес из плоского списка. Фильтры с несуществующим родителем
// выводятся на верхнем уровне.
func (s *FilterService) Tree(ctx context.Context) ([]*models.FilterNode, error) {
	const op = "service.FilterService.Tree"

	filters, err := s.store.Filters(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return BuildTree(filters), nil
}

func BuildTree(filters []models.Filter) []*models.FilterNode {
	nodes := make(map[string]*models.FilterNode, len(filters))
	for _, f := range filters {
		nodes[f.ID] = &models.FilterNode{Filter: f, Children: []*models.FilterNode{}}
	}

	roots := []*models.FilterNode{}
	attached := make(map[string]bool, len(filters))

	for _, f := range sortedByOrder(filters) {
		node := nodes[f.ID]
		parent, ok := nodes[f.Parent]
		if f.Parent == "" || !ok || f.Parent == f.ID {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	var mark func(n *models.FilterNode)
	mark = func(n *models.FilterNode) {
		if attached[n.ID] {
			return
		}
		attached[n.ID] = true
		for _, c := range n.Children {
			mark(c)
		}
	}
	for _, r := range roots {
		mark(r)
	}

	// узлы из испорченных циклов поднимаются наверх
	for _, f := range sortedByOrder(filters) {
		if attached[f.ID] {
			continue
		}
		node := nodes[f.ID]
		if parent, ok := nodes[f.Parent]; ok {
			parent.Children = lo.Reject(parent.Children, func(c *models.FilterNode, _ int) bool { return c.ID == f.ID })
		}
		roots = append(roots, node)
		mark(node)
	}

	return roots
}

func (s *FilterService) Add(ctx context.Context, name, parent, color string) (models.Filter, error) {
	const op = "service.FilterService.Add"
	log := s.log.With(
		slog.String("op", op),
		slog.String("name", name),
	)

	name = sanitize.Text(name)
	if name == "" {
		return models.Filter{}, fmt.Errorf("%s: filter name is required: %w", op, models.ErrValidation)
	}

	color, err := normalizeColor(color)
	if err != nil {
		return models.Filter{}, fmt.Errorf("%s: %w", op, err)
	}

	filters, err := s.store.Filters(ctx)
	if err != nil {
		return models.Filter{}, fmt.Errorf("%s: %w", op, err)
	}

	if parent != "" && indexOf(filters, parent) < 0 {
		return models.Filter{}, fmt.Errorf("%s: parent %q: %w", op, parent, models.ErrFilterNotFound)
	}

	f := models.Filter{
		ID:     uniqueID(filters, name),
		Name:   name,
		Slug:   slug.Unique(slug.Generate(name), slugTaken(filters, "")),
		Parent: parent,
		Color:  color,
		Order:  len(siblings(filters, parent)),
	}

	filters = append(filters, f)
	if err := s.save(ctx, filters); err != nil {
		log.Error("failed to save filters", sl.Err(err))
		return models.Filter{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("filter added", slog.String("id", f.ID), slog.String("slug", f.Slug))
	return f, nil
}

// Update меняет переданные поля. Переименование не меняет slug.
func (s *FilterService) Update(ctx context.Context, id string, upd models.FilterUpdate) (models.Filter, error) {
	const op = "service.FilterService.Update"
	log := s.log.With(
		slog.String("op", op),
		slog.String("id", id),
	)

	filters, err := s.store.Filters(ctx)
	if err != nil {
		return models.Filter{}, fmt.Errorf("%s: %w", op, err)
	}

	idx := indexOf(filters, id)
	if idx < 0 {
		return models.Filter{}, fmt.Errorf("%s: %w", op, models.ErrFilterNotFound)
	}

	if upd.Name != nil {
		name := sanitize.Text(*upd.Name)
		if name == "" {
			return models.Filter{}, fmt.Errorf("%s: filter name is required: %w", op, models.ErrValidation)
		}
		filters[idx].Name = name
	}

	if upd.Color != nil {
		color, err := normalizeColor(*upd.Color)
		if err != nil {
			return models.Filter{}, fmt.Errorf("%s: %w", op, err)
		}
		filters[idx].Color = color
	}

	if upd.Slug != nil {
		if err := setSlug(filters, idx, *upd.Slug); err != nil {
			return models.Filter{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	if upd.Parent != nil {
		if filters, err = setParent(filters, idx, *upd.Parent); err != nil {
			return models.Filter{}, fmt.Errorf("%s: %w", op, err)
		}
		idx = indexOf(filters, id)
	}

	if err := s.save(ctx, filters); err != nil {
		log.Error("failed to save filters", sl.Err(err))
		return models.Filter{}, fmt.Errorf("%s: %w", op, err)
	}

	return filters[idx], nil
}

func (s *FilterService) SetParent(ctx context.Context, id, parent string) (models.Filter, error) {
	return s.Update(ctx, id, models.FilterUpdate{Parent: &parent})
}

func (s *FilterService) SetColor(ctx context.Context, id, color string) (models.Filter, error) {
	return s.Update(ctx, id, models.FilterUpdate{Color: &color})
}

func (s *FilterService) SetSlug(ctx context.Context, id, value string) (models.Filter, error) {
	return s.Update(ctx, id, models.FilterUpdate{Slug: &value})
}

// Delete удаляет фильтр. Дочерние фильтры переходят к его родителю и
// встают в конец этого уровня; порядок уровня уплотняется.
func (s *FilterService) Delete(ctx context.Context, id string) error {
	const op = "service.FilterService.Delete"
	log := s.log.With(
		slog.String("op", op),
		slog.String("id", id),
	)

	filters, err := s.store.Filters(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	idx := indexOf(filters, id)
	if idx < 0 {
		return fmt.Errorf("%s: %w", op, models.ErrFilterNotFound)
	}
	deleted := filters[idx]

	filters = append(filters[:idx:idx], filters[idx+1:]...)

	next := 0
	for _, f := range siblings(filters, deleted.Parent) {
		next = max(next, f.Order+1)
	}
	children := sortedByOrder(siblings(filters, deleted.ID))
	for _, child := range children {
		i := indexOf(filters, child.ID)
		filters[i].Parent = deleted.Parent
		filters[i].Order = next
		next++
	}

	densify(filters, deleted.Parent)

	if err := s.save(ctx, filters); err != nil {
		log.Error("failed to save filters", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("filter deleted", slog.Int("reparented", len(children)))
	return nil
}

func (s *FilterService) DeleteAll(ctx context.Context) (int, error) {
	const op = "service.FilterService.DeleteAll"

	filters, err := s.store.Filters(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.save(ctx, []models.Filter{}); err != nil {
		s.log.Error("failed to clear filters", slog.String("op", op), sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return len(filters), nil
}

// Reorder выставляет Order равным позиции id в списке. Фильтры, которых
// нет в списке, сохраняют прежнее значение.
func (s *FilterService) Reorder(ctx context.Context, ids []string) ([]models.Filter, error) {
	const op = "service.FilterService.Reorder"

	filters, err := s.store.Filters(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for pos, id := range ids {
		if i := indexOf(filters, id); i >= 0 {
			filters[i].Order = pos
		}
	}

	if err := s.save(ctx, filters); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return filters, nil
}

func (s *FilterService) save(ctx context.Context, filters []models.Filter) error {
	if err := s.store.SaveFilters(ctx, filters); err != nil {
		return err
	}

	names := lo.Associate(filters, func(f models.Filter) (string, string) { return f.ID, f.Name })
	if err := s.store.SaveLegacyFilterMap(ctx, names); err != nil {
		return fmt.Errorf("legacy filter map: %w", err)
	}

	return nil
}

func setSlug(filters []models.Filter, idx int, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("slug is required: %w", models.ErrValidation)
	}
	candidate := slug.Generate(strings.TrimSpace(value))
	if slugTaken(filters, filters[idx].ID)(candidate) {
		return fmt.Errorf("slug %q: %w", candidate, models.ErrSlugTaken)
	}
	filters[idx].Slug = candidate
	return nil
}

func setParent(filters []models.Filter, idx int, parent string) ([]models.Filter, error) {
	f := filters[idx]
	if f.Parent == parent {
		return filters, nil
	}

	if parent != "" {
		if indexOf(filters, parent) < 0 {
			return nil, fmt.Errorf("parent %q: %w", parent, models.ErrFilterNotFound)
		}
		if createsCycle(filters, f.ID, parent) {
			return nil, models.ErrFilterCycle
		}
	}

	oldParent := f.Parent
	filters[idx].Parent = parent
	filters[idx].Order = len(siblings(filters, parent)) - 1

	densify(filters, oldParent)
	densify(filters, parent)

	return filters, nil
}

// createsCycle true, если id окажется среди предков parent
func createsCycle(filters []models.Filter, id, parent string) bool {
	seen := map[string]bool{}
	for cur := parent; cur != ""; {
		if cur == id || seen[cur] {
			return true
		}
		seen[cur] = true

		i := indexOf(filters, cur)
		if i < 0 {
			return false
		}
		cur = filters[i].Parent
	}
	return false
}

// densify перенумеровывает Order фильтров одного уровня в 0..n-1
func densify(filters []models.Filter, parent string) {
	level := sortedByOrder(siblings(filters, parent))
	for pos, f := range level {
		filters[indexOf(filters, f.ID)].Order = pos
	}
}

func siblings(filters []models.Filter, parent string) []models.Filter {
	return lo.Filter(filters, func(f models.Filter, _ int) bool { return f.Parent == parent })
}

func sortedByOrder(filters []models.Filter) []models.Filter {
	out := append([]models.Filter(nil), filters...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func indexOf(filters []models.Filter, id string) int {
	_, i, ok := lo.FindIndexOf(filters, func(f models.Filter) bool { return f.ID == id })
	if !ok {
		return -1
	}
	return i
}

func slugTaken(filters []models.Filter, exceptID string) func(string) bool {
	return func(candidate string) bool {
		return lo.ContainsBy(filters, func(f models.Filter) bool {
			return f.ID != exceptID && f.Slug == candidate
		})
	}
}

func uniqueID(filters []models.Filter, name string) string {
	for {
		id := slug.FilterID(name)
		if indexOf(filters, id) < 0 {
			return id
		}
	}
}

func normalizeColor(color string) (string, error) {
	if strings.TrimSpace(color) == "" {
		return DefaultColor, nil
	}
	c := sanitize.HexColor(color)
	if c == "" {
		return "", fmt.Errorf("invalid color %q: %w", color, models.ErrValidation)
	}
	return c, nil
}
