package domain

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/entities"
	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/notify"
	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/service/alert"
	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/storage"
)

var testNow = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC) //nolint:gochecknoglobals

type fakeProber struct {
	calls atomic.Int32
	probe func(ctx context.Context, domain string) entities.DomainRecord
}

func (p *fakeProber) Probe(ctx context.Context, domain string) entities.DomainRecord {
	p.calls.Add(1)
	return p.probe(ctx, domain)
}

func online(days int) entities.DomainRecord {
	return entities.DomainRecord{
		Status:        entities.StatusOnline,
		HasSSL:        true,
		CommonName:    "example",
		ValidUntil:    testNow.Add(time.Duration(days) * day),
		DaysRemaining: entities.IntPtr(days),
		LastCheck:     testNow,
	}
}

func alwaysOnline(days int) *fakeProber {
	return &fakeProber{probe: func(context.Context, string) entities.DomainRecord {
		return online(days)
	}}
}

type testEngine struct {
	*Engine
	store    *storage.MockStore
	notifier *notify.MockNotifier
	clock    *clockwork.FakeClock
}

func newTestEngine(t *testing.T, prober Prober, opts Options) testEngine {
	t.Helper()

	ctrl := gomock.NewController(t)
	store := storage.NewMockStore(ctrl)
	notifier := notify.NewMockNotifier(ctrl)
	clock := clockwork.NewFakeClockAt(testNow)

	if opts.Clock == nil {
		opts.Clock = clock
	}

	return testEngine{
		Engine:   New(store, notifier, prober, zaptest.NewLogger(t), opts),
		store:    store,
		notifier: notifier,
		clock:    clock,
	}
}

func (te testEngine) load(t *testing.T, domains entities.Domains) {
	t.Helper()

	te.store.EXPECT().Load(gomock.Any()).Return(domains.Clone(), nil)
	require.NoError(t, te.Load(context.Background(), nil))
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("seeds missing domains and persists", func(t *testing.T) {
		t.Parallel()

		te := newTestEngine(t, alwaysOnline(30), Options{})
		te.store.EXPECT().Load(gomock.Any()).Return(entities.Domains{
			"alpha.example": online(30),
		}, nil)
		te.store.EXPECT().Save(gomock.Any(), entities.Domains{
			"alpha.example": online(30),
			"beta.example":  {},
		}).Return(nil)

		err := te.Load(context.Background(), []string{"ALPHA.example", "https://beta.example/path", "not a domain"})
		require.NoError(t, err)
		require.Len(t, te.ListDomains(), 2)
	})

	t.Run("nothing to seed does not write", func(t *testing.T) {
		t.Parallel()

		te := newTestEngine(t, alwaysOnline(30), Options{})
		te.store.EXPECT().Load(gomock.Any()).Return(nil, nil)

		require.NoError(t, te.Load(context.Background(), nil))
		require.Empty(t, te.ListDomains())
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()

		te := newTestEngine(t, alwaysOnline(30), Options{})
		boom := errors.New("boom")
		te.store.EXPECT().Load(gomock.Any()).Return(nil, boom)

		require.ErrorIs(t, te.Load(context.Background(), nil), boom)
	})
}

func TestAddDomain(t *testing.T) {
	t.Parallel()

	t.Run("probes immediately and persists", func(t *testing.T) {
		t.Parallel()

		prober := alwaysOnline(30)
		te := newTestEngine(t, prober, Options{})
		te.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		rec, err := te.AddDomain(context.Background(), "Example.com")
		require.NoError(t, err)
		require.Equal(t, online(30), rec)

		_, err = te.AddDomain(context.Background(), "example.com")
		require.NoError(t, err)
		require.EqualValues(t, 2, prober.calls.Load(), "add never serves from cache")

		require.Equal(t, entities.Domains{"example.com": online(30)}, te.ListDomains())
	})

	t.Run("re-adding keeps the note", func(t *testing.T) {
		t.Parallel()

		te := newTestEngine(t, alwaysOnline(30), Options{})
		te.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

		ctx := context.Background()
		_, err := te.AddDomain(ctx, "example.com")
		require.NoError(t, err)
		require.NoError(t, te.SetNote(ctx, "example.com", "owned by billing"))

		rec, err := te.AddDomain(ctx, "example.com")
		require.NoError(t, err)
		require.Equal(t, "owned by billing", rec.Note)
	})

	t.Run("invalid name is rejected before probing", func(t *testing.T) {
		t.Parallel()

		prober := alwaysOnline(30)
		te := newTestEngine(t, prober, Options{})

		_, err := te.AddDomain(context.Background(), "not a domain")
		require.ErrorIs(t, err, ErrInvalidDomain)
		require.Zero(t, prober.calls.Load())
	})

	t.Run("persistence failure keeps the in-memory record", func(t *testing.T) {
		t.Parallel()

		te := newTestEngine(t, alwaysOnline(30), Options{})
		te.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		_, err := te.AddDomain(context.Background(), "example.com")
		require.NoError(t, err)
		require.Contains(t, te.ListDomains(), "example.com")
	})
}

func TestRemoveDomain(t *testing.T) {
	t.Parallel()

	t.Run("unknown domain is a no-op", func(t *testing.T) {
		t.Parallel()

		te := newTestEngine(t, alwaysOnline(30), Options{})
		require.NoError(t, te.RemoveDomain(context.Background(), "example.com"))
	})

	t.Run("removes and persists once", func(t *testing.T) {
		t.Parallel()

		te := newTestEngine(t, alwaysOnline(30), Options{})
		te.load(t, entities.Domains{"example.com": online(30), "other.example": online(30)})
		te.store.EXPECT().Save(gomock.Any(), entities.Domains{"other.example": online(30)}).Return(nil)

		ctx := context.Background()
		require.NoError(t, te.RemoveDomain(ctx, "example.com"))
		require.NoError(t, te.RemoveDomain(ctx, "example.com"))
		require.NotContains(t, te.ListDomains(), "example.com")
	})

	t.Run("alert history is forgotten", func(t *testing.T) {
		t.Parallel()

		te := newTestEngine(t, alwaysOnline(5), Options{})
		te.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		te.notifier.EXPECT().SendExpiryAlert(gomock.Any(), "example.com", 5).Return(nil).Times(2)

		ctx := context.Background()
		_, err := te.AddDomain(ctx, "example.com")
		require.NoError(t, err)
		require.Equal(t, 1, te.ScanAlerts(ctx))
		require.Equal(t, 0, te.ScanAlerts(ctx))

		require.NoError(t, te.RemoveDomain(ctx, "example.com"))
		_, err = te.AddDomain(ctx, "example.com")
		require.NoError(t, err)
		require.Equal(t, 1, te.ScanAlerts(ctx))
	})
}

func TestSetNote(t *testing.T) {
	t.Parallel()

	t.Run("unknown domain", func(t *testing.T) {
		t.Parallel()

		te := newTestEngine(t, alwaysOnline(30), Options{})
		err := te.SetNote(context.Background(), "example.com", "note")
		require.ErrorIs(t, err, ErrDomainNotFound)
	})

	t.Run("note survives refresh", func(t *testing.T) {
		t.Parallel()

		te := newTestEngine(t, alwaysOnline(30), Options{})
		te.load(t, entities.Domains{"example.com": {}})
		te.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		ctx := context.Background()
		require.NoError(t, te.SetNote(ctx, "example.com", "renewal owner: ops"))
		te.RefreshAll(ctx)

		rec := te.ListDomains()["example.com"]
		require.Equal(t, "renewal owner: ops", rec.Note)
		require.Equal(t, entities.StatusOnline, rec.Status)
	})
}

func TestLookup(t *testing.T) {
	t.Parallel()

	prober := alwaysOnline(30)
	te := newTestEngine(t, prober, Options{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rec, ok := te.Lookup(ctx, "example.com")
		require.True(t, ok)
		require.Equal(t, online(30), rec)
	}
	require.EqualValues(t, 1, prober.calls.Load())

	te.clock.Advance(DefaultCacheTTL - time.Second)
	_, ok := te.Lookup(ctx, "example.com")
	require.True(t, ok)
	require.EqualValues(t, 1, prober.calls.Load())

	te.clock.Advance(time.Second)
	_, ok = te.Lookup(ctx, "example.com")
	require.True(t, ok)
	require.EqualValues(t, 2, prober.calls.Load())
}

func TestRefreshAll(t *testing.T) {
	t.Parallel()

	t.Run("bounded parallelism and cached results", func(t *testing.T) {
		t.Parallel()

		var inflight, peak atomic.Int32
		prober := &fakeProber{probe: func(context.Context, string) entities.DomainRecord {
			n := inflight.Add(1)
			defer inflight.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			return online(30)
		}}

		te := newTestEngine(t, prober, Options{Workers: 3})
		domains := make(entities.Domains)
		for i := 0; i < 12; i++ {
			domains[fmt.Sprintf("d%d.example", i)] = entities.DomainRecord{}
		}
		te.load(t, domains)
		te.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		ctx := context.Background()
		te.RefreshAll(ctx)
		te.RefreshAll(ctx)

		require.EqualValues(t, 12, prober.calls.Load(), "second cycle is served from cache")
		require.LessOrEqual(t, peak.Load(), int32(3))
		for name, rec := range te.ListDomains() { //nolint:gocritic
			require.Equal(t, entities.StatusOnline, rec.Status, name)
		}
	})

	t.Run("hung probe does not stall the cycle", func(t *testing.T) {
		t.Parallel()

		prober := &fakeProber{probe: func(ctx context.Context, domain string) entities.DomainRecord {
			if domain == "fast.example" {
				return online(30)
			}
			<-ctx.Done()
			return entities.DomainRecord{Status: entities.StatusOffline, LastCheck: testNow}
		}}

		te := newTestEngine(t, prober, Options{
			Workers:     2,
			TaskTimeout: 50 * time.Millisecond,
			Clock:       clockwork.NewRealClock(),
		})
		previous := online(20)
		te.load(t, entities.Domains{
			"fast.example":  {},
			"hung.example":  previous,
			"fresh.example": {Note: "new"},
		})
		te.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

		start := time.Now()
		te.RefreshAll(context.Background())
		require.Less(t, time.Since(start), 5*time.Second)

		domains := te.ListDomains()
		require.Equal(t, entities.StatusOnline, domains["fast.example"].Status)
		require.Equal(t, previous, domains["hung.example"], "previous result is kept")

		fresh := domains["fresh.example"]
		require.Equal(t, entities.StatusError, fresh.Status)
		require.False(t, fresh.HasSSL)
		require.NotEmpty(t, fresh.ErrorMessage)
		require.Equal(t, "new", fresh.Note)
	})

	t.Run("domain removed mid-cycle stays removed", func(t *testing.T) {
		t.Parallel()

		var te testEngine
		prober := &fakeProber{probe: func(ctx context.Context, domain string) entities.DomainRecord {
			if domain == "gone.example" {
				require.NoError(t, te.RemoveDomain(ctx, domain))
			}
			return online(30)
		}}

		te = newTestEngine(t, prober, Options{Workers: 1})
		te.load(t, entities.Domains{"gone.example": {}, "kept.example": {}})
		te.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		te.RefreshAll(context.Background())

		domains := te.ListDomains()
		require.NotContains(t, domains, "gone.example")
		require.Contains(t, domains, "kept.example")
	})
}

func TestScanAlerts(t *testing.T) {
	t.Parallel()

	t.Run("alerts crossed thresholds once in name order", func(t *testing.T) {
		t.Parallel()

		te := newTestEngine(t, alwaysOnline(30), Options{})
		te.load(t, entities.Domains{
			"b.example":       online(5),
			"a.example":       online(1),
			"c.example":       online(7),
			"expired.example": online(-2),
			"down.example":    {Status: entities.StatusOffline, LastCheck: testNow},
			"nossl.example":   {Status: entities.StatusOnline, DaysRemaining: entities.IntPtr(3)},
		})

		gomock.InOrder(
			te.notifier.EXPECT().SendExpiryAlert(gomock.Any(), "a.example", 1).Return(nil),
			te.notifier.EXPECT().SendExpiryAlert(gomock.Any(), "b.example", 5).Return(nil),
		)

		ctx := context.Background()
		require.Equal(t, 2, te.ScanAlerts(ctx))
		require.Equal(t, 0, te.ScanAlerts(ctx))
	})

	t.Run("failed send is retried", func(t *testing.T) {
		t.Parallel()

		te := newTestEngine(t, alwaysOnline(30), Options{})
		te.load(t, entities.Domains{"example.com": online(10)})

		gomock.InOrder(
			te.notifier.EXPECT().SendExpiryAlert(gomock.Any(), "example.com", 10).Return(errors.New("smtp down")),
			te.notifier.EXPECT().SendExpiryAlert(gomock.Any(), "example.com", 10).Return(nil),
		)

		ctx := context.Background()
		require.Equal(t, 0, te.ScanAlerts(ctx))
		require.Equal(t, 1, te.ScanAlerts(ctx))
		require.Equal(t, 0, te.ScanAlerts(ctx))
	})

	t.Run("custom thresholds", func(t *testing.T) {
		t.Parallel()

		te := newTestEngine(t, alwaysOnline(30), Options{Thresholds: []int{30}})
		te.load(t, entities.Domains{"a.example": online(30), "b.example": online(5)})
		te.notifier.EXPECT().SendExpiryAlert(gomock.Any(), "a.example", 30).Return(nil)

		require.Equal(t, 1, te.ScanAlerts(context.Background()))
	})

	t.Run("summary report follows the scan", func(t *testing.T) {
		t.Parallel()

		te := newTestEngine(t, alwaysOnline(30), Options{Summary: true})
		domains := entities.Domains{"a.example": online(20)}
		te.load(t, domains)
		te.notifier.EXPECT().SendSummaryReport(gomock.Any(), domains).Return(errors.New("ignored"))

		require.Equal(t, 0, te.ScanAlerts(context.Background()))
	})
}

func TestAlertTick(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t, alwaysOnline(30), Options{
		Gate: alert.NewGate(time.UTC, 9, 0, time.Hour),
	})
	te.load(t, entities.Domains{"example.com": online(5)})
	te.notifier.EXPECT().SendExpiryAlert(gomock.Any(), "example.com", 5).Return(nil)

	ctx := context.Background()

	te.clock.Advance(59 * time.Minute)
	require.False(t, te.AlertTick(ctx), "08:59")

	te.clock.Advance(time.Minute)
	require.True(t, te.AlertTick(ctx), "09:00")
	require.False(t, te.AlertTick(ctx), "same day")

	te.clock.Advance(3 * time.Minute)
	require.False(t, te.AlertTick(ctx), "same day later poll")

	te.clock.Advance(24 * time.Hour)
	require.True(t, te.AlertTick(ctx), "next day, threshold already alerted")
}

func TestSendTestAlert(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t, alwaysOnline(30), Options{})
	boom := errors.New("boom")
	gomock.InOrder(
		te.notifier.EXPECT().SendExpiryAlert(gomock.Any(), testAlertDomain, 10).Return(nil),
		te.notifier.EXPECT().SendExpiryAlert(gomock.Any(), testAlertDomain, 10).Return(boom),
	)

	require.NoError(t, te.SendTestAlert(context.Background()))
	require.ErrorIs(t, te.SendTestAlert(context.Background()), boom)
}
