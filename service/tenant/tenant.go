// Package tenant holds the gym selected on this device.
package tenant

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/naiba/gymkit/model"
	"github.com/naiba/gymkit/pkg/logger"
	"github.com/naiba/gymkit/pkg/utils"
	"github.com/naiba/gymkit/service/store"
)

const SelectionKey = "selected_gym"

var ErrEmptySlug = errors.New("gym slug is empty")

type Context struct {
	kv  store.KV
	log *logger.Logger

	mu        sync.RWMutex
	selection *model.TenantSelection
	loading   bool
	ready     chan struct{}
	readyOnce sync.Once
	observers []func(slug string, ok bool)
}

func NewContext(kv store.KV, log *logger.Logger) *Context {
	if log == nil {
		log = logger.Discard()
	}
	return &Context{
		kv:    kv,
		log:   log.Named("tenant"),
		ready: make(chan struct{}),
	}
}

// Load 启动时读取一次持久化的选择，读取失败按未选择处理
func (c *Context) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
		c.readyOnce.Do(func() { close(c.ready) })
	}()

	raw, ok, err := c.kv.Get(ctx, SelectionKey)
	if err != nil {
		c.log.WithError(err).Warn("read gym selection failed")
		return err
	}
	if !ok {
		return nil
	}

	var sel model.TenantSelection
	if err := utils.Json.UnmarshalFromString(raw, &sel); err != nil || sel.Slug == "" {
		// 旧版本只存了 slug 字符串
		sel = model.TenantSelection{Slug: strings.Trim(strings.TrimSpace(raw), `"`)}
	}
	if sel.Slug == "" {
		return nil
	}

	c.mu.Lock()
	c.selection = &sel
	c.mu.Unlock()
	c.notify(sel.Slug, true)
	return nil
}

// Loading reports whether the startup read is still in flight.
func (c *Context) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Ready is closed once Load has finished.
func (c *Context) Ready() <-chan struct{} {
	return c.ready
}

func (c *Context) Get() (model.TenantSelection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.selection == nil {
		return model.TenantSelection{}, false
	}
	return *c.selection, true
}

func (c *Context) Slug() (string, bool) {
	sel, ok := c.Get()
	return sel.Slug, ok
}

// Set persists sel and updates memory; nil removes the selection.
func (c *Context) Set(ctx context.Context, sel *model.TenantSelection) error {
	if sel == nil {
		return c.Clear(ctx)
	}
	next := *sel
	next.Slug = strings.TrimSpace(next.Slug)
	if next.Slug == "" {
		return ErrEmptySlug
	}

	raw, err := utils.Json.MarshalToString(next)
	if err != nil {
		return err
	}
	if err := c.kv.Set(ctx, SelectionKey, raw); err != nil {
		c.log.WithError(err).WithField("slug", next.Slug).Error("persist gym selection failed")
		return err
	}

	c.mu.Lock()
	c.selection = &next
	c.mu.Unlock()
	c.log.WithField("slug", next.Slug).Info("gym selected")
	c.notify(next.Slug, true)
	return nil
}

// SetSlug ..
func (c *Context) SetSlug(ctx context.Context, slug string) error {
	return c.Set(ctx, &model.TenantSelection{Slug: slug})
}

func (c *Context) Clear(ctx context.Context) error {
	err := c.kv.Delete(ctx, SelectionKey)
	if err != nil {
		c.log.WithError(err).Error("remove gym selection failed")
	}

	// 内存状态总是清掉，持久化失败只影响下次启动
	c.mu.Lock()
	c.selection = nil
	c.mu.Unlock()
	c.notify("", false)
	return err
}

// OnChange registers fn to be called after every selection change.
func (c *Context) OnChange(fn func(slug string, ok bool)) {
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

func (c *Context) notify(slug string, ok bool) {
	c.mu.RLock()
	observers := append([]func(string, bool){}, c.observers...)
	c.mu.RUnlock()
	for _, fn := range observers {
		fn(slug, ok)
	}
}
