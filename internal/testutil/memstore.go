// Package testutil provee un Credential Store en memoria que implementa los puertos
// de internal/domain/repository, para tests de casos de uso y handlers.
package testutil

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/jhoicas/tarifarios-api/internal/domain"
	"github.com/jhoicas/tarifarios-api/internal/domain/entity"
	"github.com/jhoicas/tarifarios-api/internal/domain/repository"
)

var (
	_ repository.UserRepository                = userView{}
	_ repository.AccessRepository              = (*MemStore)(nil)
	_ repository.PermissionRepository          = permissionView{}
	_ repository.TarifarioPermissionRepository = linkView{}
	_ repository.TarifarioRepository           = tarifarioView{}
	_ repository.TarifarioProductRepository    = assignmentView{}
	_ repository.ProductRepository             = productView{}
	_ repository.PriceComparisonRepository     = (*MemStore)(nil)
)

type pairKey struct{ a, b int64 }

// MemStore store en memoria. Fail, si no es nil, se devuelve en cada operación
// (simula una caída del store).
type MemStore struct {
	mu sync.Mutex

	Fail error

	users       map[int64]*entity.User
	roles       map[int64]*entity.Role
	permissions map[int64]*entity.Permission
	grants      map[pairKey]struct{} // (rol, permiso)
	links       map[pairKey]*entity.TarifarioPermission
	tarifarios  map[int64]*entity.Tarifario
	products    map[int64]*entity.Product
	assignments map[pairKey]*entity.TarifarioProduct // (tarifario, producto)
	companies   map[int64]*entity.Company
	insurers    map[int64]*entity.HealthInsurer

	nextTarifarioID int64
}

// NewMemStore store vacío.
func NewMemStore() *MemStore {
	return &MemStore{
		users:           map[int64]*entity.User{},
		roles:           map[int64]*entity.Role{},
		permissions:     map[int64]*entity.Permission{},
		grants:          map[pairKey]struct{}{},
		links:           map[pairKey]*entity.TarifarioPermission{},
		tarifarios:      map[int64]*entity.Tarifario{},
		products:        map[int64]*entity.Product{},
		assignments:     map[pairKey]*entity.TarifarioProduct{},
		companies:       map[int64]*entity.Company{},
		insurers:        map[int64]*entity.HealthInsurer{},
		nextTarifarioID: 1000,
	}
}

// ── Seed ─────────────────────────────────────────────────────────────────────

func (m *MemStore) AddRole(id int64, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[id] = &entity.Role{ID: id, Name: name}
}

func (m *MemStore) AddPermission(id int64, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.permissions[id] = &entity.Permission{ID: id, Name: name}
}

func (m *MemStore) AddUser(u entity.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := u
	m.users[u.ID] = &cp
}

func (m *MemStore) SetUserActive(id int64, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.Active = active
	}
}

func (m *MemStore) Grant(roleID, permissionID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grants[pairKey{roleID, permissionID}] = struct{}{}
}

func (m *MemStore) Revoke(roleID, permissionID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.grants, pairKey{roleID, permissionID})
}

func (m *MemStore) AddTarifario(t entity.Tarifario) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := t
	m.tarifarios[t.ID] = &cp
}

func (m *MemStore) Link(permissionID, tarifarioID int64, description string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[pairKey{permissionID, tarifarioID}] = &entity.TarifarioPermission{
		PermissionID: permissionID, TarifarioID: tarifarioID, Description: description,
	}
}

func (m *MemStore) AddProduct(p entity.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := p
	m.products[p.ID] = &cp
}

func (m *MemStore) AddCompany(c entity.Company) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := c
	m.companies[c.ID] = &cp
}

func (m *MemStore) AddInsurer(h entity.HealthInsurer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := h
	m.insurers[h.ID] = &cp
}

func (m *MemStore) Assign(a entity.TarifarioProduct) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := a
	m.assignments[pairKey{a.TarifarioID, a.ProductID}] = &cp
}

// LinkCount número de vínculos permiso-tarifario almacenados.
func (m *MemStore) LinkCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.links)
}

// AssignmentCount número de asignaciones de precio almacenadas.
func (m *MemStore) AssignmentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.assignments)
}

// ── UserRepository ───────────────────────────────────────────────────────────

// Users vista de MemStore como UserRepository.
func (m *MemStore) Users() repository.UserRepository { return userView{m} }

type userView struct{ m *MemStore }

func (v userView) GetByID(_ context.Context, id int64) (*entity.User, error) {
	m := v.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (v userView) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m := v.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// ── AccessRepository ─────────────────────────────────────────────────────────

func (m *MemStore) GetRole(_ context.Context, roleID int64) (*entity.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	r, ok := m.roles[roleID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *MemStore) ListRolePermissions(_ context.Context, roleID int64) ([]entity.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	var out []entity.Permission
	for k := range m.grants {
		if k.a != roleID {
			continue
		}
		if p, ok := m.permissions[k.b]; ok {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemStore) ListTarifarioIDs(_ context.Context, permissionIDs []int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	var out []int64
	for k := range m.links {
		if containsID(permissionIDs, k.a) {
			out = append(out, k.b)
		}
	}
	return out, nil
}

func (m *MemStore) HasTarifarioAccess(_ context.Context, permissionIDs []int64, tarifarioID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return false, m.Fail
	}
	for k := range m.links {
		if k.b == tarifarioID && containsID(permissionIDs, k.a) {
			return true, nil
		}
	}
	return false, nil
}

// ── PermissionRepository ─────────────────────────────────────────────────────

// Permissions vista de MemStore como PermissionRepository.
func (m *MemStore) Permissions() repository.PermissionRepository { return permissionView{m} }

type permissionView struct{ m *MemStore }

func (v permissionView) GetByID(_ context.Context, id int64) (*entity.Permission, error) {
	m := v.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	p, ok := m.permissions[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// ── ProductRepository ────────────────────────────────────────────────────────

// Products vista de MemStore como ProductRepository.
func (m *MemStore) Products() repository.ProductRepository { return productView{m} }

type productView struct{ m *MemStore }

func (v productView) GetByCUM(_ context.Context, cum string) (*entity.Product, error) {
	m := v.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	for _, p := range m.products {
		if p.CUM == cum {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

// ── TarifarioRepository ──────────────────────────────────────────────────────

// Tarifarios vista de MemStore como TarifarioRepository.
func (m *MemStore) Tarifarios() repository.TarifarioRepository { return tarifarioView{m} }

type tarifarioView struct{ m *MemStore }

func (v tarifarioView) Create(_ context.Context, t *entity.Tarifario) error {
	m := v.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	m.nextTarifarioID++
	t.ID = m.nextTarifarioID
	cp := *t
	m.tarifarios[t.ID] = &cp
	return nil
}

func (v tarifarioView) GetByID(_ context.Context, id int64) (*entity.Tarifario, error) {
	m := v.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	t, ok := m.tarifarios[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (v tarifarioView) Update(_ context.Context, t *entity.Tarifario) error {
	m := v.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	if _, ok := m.tarifarios[t.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *t
	m.tarifarios[t.ID] = &cp
	return nil
}

func (v tarifarioView) Delete(_ context.Context, id int64) (bool, error) {
	m := v.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return false, m.Fail
	}
	if _, ok := m.tarifarios[id]; !ok {
		return false, nil
	}
	delete(m.tarifarios, id)
	return true, nil
}

// ── TarifarioPermissionRepository ────────────────────────────────────────────

// Links vista de MemStore como TarifarioPermissionRepository.
func (m *MemStore) Links() repository.TarifarioPermissionRepository { return linkView{m} }

type linkView struct{ m *MemStore }

func (v linkView) Get(_ context.Context, permissionID, tarifarioID int64) (*entity.TarifarioPermission, error) {
	m := v.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	l, ok := m.links[pairKey{permissionID, tarifarioID}]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (v linkView) Create(_ context.Context, tp *entity.TarifarioPermission) error {
	m := v.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	k := pairKey{tp.PermissionID, tp.TarifarioID}
	if _, ok := m.links[k]; ok {
		return domain.ErrDuplicate
	}
	cp := *tp
	m.links[k] = &cp
	return nil
}

func (v linkView) UpdateDescription(_ context.Context, permissionID, tarifarioID int64, description string) (bool, error) {
	m := v.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return false, m.Fail
	}
	l, ok := m.links[pairKey{permissionID, tarifarioID}]
	if !ok {
		return false, nil
	}
	l.Description = description
	return true, nil
}

func (v linkView) Delete(_ context.Context, permissionID, tarifarioID int64) (bool, error) {
	m := v.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return false, m.Fail
	}
	k := pairKey{permissionID, tarifarioID}
	if _, ok := m.links[k]; !ok {
		return false, nil
	}
	delete(m.links, k)
	return true, nil
}

func (v linkView) DeleteByTarifario(_ context.Context, tarifarioID int64) (int64, error) {
	m := v.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return 0, m.Fail
	}
	var n int64
	for k := range m.links {
		if k.b == tarifarioID {
			delete(m.links, k)
			n++
		}
	}
	return n, nil
}

func (v linkView) List(_ context.Context, f repository.TarifarioPermissionFilter, limit, offset int) ([]*entity.TarifarioPermission, int, error) {
	m := v.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, 0, m.Fail
	}
	var all []*entity.TarifarioPermission
	for k, l := range m.links {
		if f.PermissionID != nil && *f.PermissionID != k.a {
			continue
		}
		if f.TarifarioID != nil && *f.TarifarioID != k.b {
			continue
		}
		cp := *l
		if p, ok := m.permissions[k.a]; ok {
			cp.PermissionName = p.Name
		}
		if t, ok := m.tarifarios[k.b]; ok {
			cp.TarifarioName = t.Name
		}
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].PermissionID != all[j].PermissionID {
			return all[i].PermissionID < all[j].PermissionID
		}
		return all[i].TarifarioID < all[j].TarifarioID
	})
	total := len(all)
	if offset >= total {
		return []*entity.TarifarioPermission{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// ── TarifarioProductRepository ───────────────────────────────────────────────

// Assignments vista de MemStore como TarifarioProductRepository.
func (m *MemStore) Assignments() repository.TarifarioProductRepository { return assignmentView{m} }

type assignmentView struct{ m *MemStore }

func (v assignmentView) DeleteByTarifario(_ context.Context, tarifarioID int64) (int64, error) {
	m := v.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return 0, m.Fail
	}
	var n int64
	for k := range m.assignments {
		if k.a == tarifarioID {
			delete(m.assignments, k)
			n++
		}
	}
	return n, nil
}

// ── PriceComparisonRepository ────────────────────────────────────────────────

func (m *MemStore) Compare(_ context.Context, f repository.PriceComparisonFilter) ([]repository.PriceComparisonRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	var out []repository.PriceComparisonRow
	for k, a := range m.assignments {
		if k.b != f.ProductID {
			continue
		}
		if len(f.TarifarioIDs) > 0 && !containsID(f.TarifarioIDs, k.a) {
			continue
		}
		t, ok := m.tarifarios[k.a]
		if !ok {
			continue
		}
		if len(f.CompanyIDs) > 0 && (t.CompanyID == nil || !containsID(f.CompanyIDs, *t.CompanyID)) {
			continue
		}
		if len(f.EPSIDs) > 0 && (t.EPSID == nil || !containsID(f.EPSIDs, *t.EPSID)) {
			continue
		}
		row := repository.PriceComparisonRow{
			TarifarioID:   t.ID,
			TarifarioName: t.Name,
			CompanyID:     t.CompanyID,
			EPSID:         t.EPSID,
			BasePrice:     a.BasePrice,
			UnitPrice:     a.UnitPrice,
			PackagePrice:  a.PackagePrice,
		}
		if t.CompanyID != nil {
			if c, ok := m.companies[*t.CompanyID]; ok {
				name := c.Name
				row.CompanyName = &name
			}
		}
		if t.EPSID != nil {
			if h, ok := m.insurers[*t.EPSID]; ok {
				name := h.Name
				row.EPSName = &name
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// ── TxRunner ─────────────────────────────────────────────────────────────────

// Run ejecuta fn con las vistas del store. Si fn falla, restaura tarifarios, vínculos
// y asignaciones al estado previo (rollback).
func (m *MemStore) Run(ctx context.Context, fn func(
	tarifarioRepo repository.TarifarioRepository,
	linkRepo repository.TarifarioPermissionRepository,
	assignmentRepo repository.TarifarioProductRepository,
) error) error {
	m.mu.Lock()
	tarifarios := maps.Clone(m.tarifarios)
	links := maps.Clone(m.links)
	assignments := maps.Clone(m.assignments)
	m.mu.Unlock()

	if err := fn(m.Tarifarios(), m.Links(), m.Assignments()); err != nil {
		m.mu.Lock()
		m.tarifarios, m.links, m.assignments = tarifarios, links, assignments
		m.mu.Unlock()
		return err
	}
	return nil
}
