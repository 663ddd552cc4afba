package detector_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/seo-detector/internal/detector"
	"github.com/example/seo-detector/internal/rules"
)

const fullHead = `<head>
	<title>Page</title>
	<meta name="description" content="d">
	<meta name="keywords" content="k">
</head>`

func page(head, body string) string {
	return "<!DOCTYPE html>\n<html>\n" + head + "\n<body>\n" + body + "\n</body>\n</html>"
}

func repeat(tag string, n int) string {
	return strings.Repeat(fmt.Sprintf("<%[1]s>x</%[1]s>", tag), n)
}

func newDetector(t *testing.T, opts ...detector.Option) *detector.Detector {
	t.Helper()

	d, err := detector.New(append([]detector.Option{detector.WithLogger(slog.New(slog.DiscardHandler))}, opts...)...)
	require.NoError(t, err)

	return d
}

func TestDefaultCatalogue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "clean page",
			html: page(fullHead, `<h1>a</h1><img alt="x"><a href="/" rel="nofollow">l</a>`),
			want: "",
		},
		{
			name: "empty alt is present",
			html: page(fullHead, `<img alt=''>`),
			want: "",
		},
		{
			name: "three images without alt",
			html: page(fullHead, `<img src="a"><img src="b"><img src="c"><img alt="d">`),
			want: "This HTML has 3 <img> tag without alt attribute",
		},
		{
			name: "two anchors without rel",
			html: page(fullHead, `<a/><a/>`),
			want: "This HTML has 2 <a> tag without rel attribute",
		},
		{
			name: "head missing title and keywords",
			html: page(`<head><meta name="description" content="d"></head>`, ""),
			want: "This HTML has <head> tag without <title> tag\n" +
				"This HTML has <head> tag without <meta name='keywords'/> tag",
		},
		{
			name: "head missing description",
			html: page(`<head><title>t</title><meta name="keywords" content="k"></head>`, ""),
			want: "This HTML has <head> tag without <meta name='description'/> tag",
		},
		{
			name: "sixteen strong tags",
			html: page(fullHead, repeat("strong", 16)),
			want: "This HTML has more than 15 <strong> tag",
		},
		{
			name: "fifteen strong tags",
			html: page(fullHead, repeat("strong", 15)),
			want: "",
		},
		{
			name: "two h1 tags",
			html: page(fullHead, repeat("h1", 2)),
			want: "This HTML has more than one <h1> tag",
		},
		{
			name: "one h1 tag",
			html: page(fullHead, repeat("H1", 1)),
			want: "",
		},
		{
			name: "no head at all",
			html: `<p>text</p>`,
			want: "",
		},
		{
			name: "defects in rule order",
			html: page(`<head></head>`, `<h1>a</h1><h1>b</h1><a></a><img>`),
			want: strings.Join([]string{
				"This HTML has 1 <img> tag without alt attribute",
				"This HTML has 1 <a> tag without rel attribute",
				"This HTML has <head> tag without <title> tag",
				"This HTML has <head> tag without <meta name='description'/> tag",
				"This HTML has <head> tag without <meta name='keywords'/> tag",
				"This HTML has more than one <h1> tag",
			}, "\n"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := newDetector(t)
			report, err := d.ScanString(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.want, report.String())
			assert.Equal(t, tt.want == "", report.Clean())

			got, ok := d.Result()
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStrongOverride(t *testing.T) {
	t.Parallel()

	d := newDetector(t, detector.WithOverridesString(`{
		"strong": {
			"tag": "strong",
			"conditions": [{
				"itself": {"assertion": "length.to.be.below", "assertValue": 3},
				"defectMessage": "This HTML has more than 2 <strong> tag"
			}]
		}
	}`))

	report, err := d.ScanString(page(fullHead, repeat("strong", 3)))
	require.NoError(t, err)
	assert.Equal(t, "This HTML has more than 2 <strong> tag", report.String())

	report, err = d.ScanString(page(fullHead, repeat("strong", 2)))
	require.NoError(t, err)
	assert.True(t, report.Clean())
}

func TestInvalidAssertion(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	overrides := rules.NewOverrides().Set("strong", rules.Override{
		Conditions: []rules.Condition{{
			Target:        rules.TargetItself,
			Assertion:     "invalid_assertion",
			AssertValue:   3,
			DefectMessage: "This HTML has more than %d <strong> tag",
		}},
	})

	d, err := detector.New(
		detector.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		detector.WithOverrides(overrides),
	)
	require.NoError(t, err)

	report, err := d.ScanString(page(fullHead, `<h1>a</h1><h1>b</h1>`))
	require.NoError(t, err)

	assert.Equal(t, []string{
		`Invalid rule conditions for HTML tag "strong"`,
		"This HTML has more than one <h1> tag",
	}, report.Messages())
	assert.Equal(t, 1, report.Invalid())
	assert.NotContains(t, report.String(), "more than %d")
	assert.Contains(t, logs.String(), "invalid rule conditions")
}

func TestCustomChildrenRule(t *testing.T) {
	t.Parallel()

	d := newDetector(t, detector.WithOverridesString(`{
		"robots": {
			"tag": "head",
			"conditions": [{
				"children": {
					"assertion": "to.containSubset",
					"assertValue": [{"name": "meta", "attribs": {"name": "robots"}}]
				},
				"defectMessage": "This HTML has <head> tag without <meta name='robots'/> tag"
			}]
		}
	}`))

	report, err := d.ScanString(page(fullHead, ""))
	require.NoError(t, err)
	assert.Equal(t, "This HTML has <head> tag without <meta name='robots'/> tag", report.String())

	withRobots := strings.Replace(fullHead, "</head>", `<meta name="robots" content="noindex"></head>`, 1)
	report, err = d.ScanString(page(withRobots, ""))
	require.NoError(t, err)
	assert.True(t, report.Clean())

	assert.Equal(t, []string{"img", "a", "head", "strong", "h1", "robots"}, d.Rules().Names())
}

func TestScanIdempotent(t *testing.T) {
	t.Parallel()

	d := newDetector(t)
	html := page(`<head></head>`, `<img><img>`+repeat("h1", 3))

	first, err := d.ScanString(html)
	require.NoError(t, err)
	second, err := d.ScanString(html)
	require.NoError(t, err)

	assert.Equal(t, first.Findings, second.Findings)
	assert.Equal(t, first.String(), second.String())
	assert.Equal(t, detector.Render(first), detector.Render(first))
	assert.Equal(t, 2+3+1, first.Defects())
}

func TestRescanReplacesReport(t *testing.T) {
	t.Parallel()

	d := newDetector(t)

	_, err := d.ScanString(page(fullHead, repeat("h1", 2)))
	require.NoError(t, err)

	_, err = d.ScanString(page(fullHead, repeat("h1", 1)))
	require.NoError(t, err)

	got, ok := d.Result()
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestResultBeforeScan(t *testing.T) {
	t.Parallel()

	got, ok := newDetector(t).Result()
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestNewRejectsMalformedOverrides(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"not json", "[1, 2]", `{"strong": `} {
		_, err := detector.New(detector.WithOverridesString(input))
		require.ErrorIs(t, err, rules.ErrConfig, input)
	}
}

func TestScanReader(t *testing.T) {
	t.Parallel()

	d := newDetector(t)
	report, err := d.ScanReader(context.Background(), strings.NewReader(page(fullHead, "<img>\r\n<img>")))
	require.NoError(t, err)
	assert.Equal(t, "This HTML has 2 <img> tag without alt attribute", report.String())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = d.ScanReader(ctx, strings.NewReader("<img>"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestRulesIsACopy(t *testing.T) {
	t.Parallel()

	d := newDetector(t)
	set := d.Rules()
	assert.Equal(t, 5, set.Len())

	_, ok := set.Get("h1")
	assert.True(t, ok)
	assert.Equal(t, rules.Defaults().Names(), set.Names())
}

func TestScanStringMultilineTags(t *testing.T) {
	t.Parallel()

	d := newDetector(t)
	report, err := d.ScanString(page(fullHead, "<img\nsrc='a.png'><a\n href='/'>x</a>"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"This HTML has 1 <img> tag without alt attribute",
		"This HTML has 1 <a> tag without rel attribute",
	}, report.Messages())
}
