package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"serve", "products", "categories", "product"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	f := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, f)
	assert.Equal(t, "text", f.DefValue)
	require.NotNil(t, cmd.PersistentFlags().Lookup("catalog"))
}

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
		  {"id":1,"title":"Backpack","price":109.95,"category":"men's clothing","rating":{"rate":3.9,"count":120}},
		  {"id":2,"title":"Ring","price":9.99,"category":"jewelery","rating":{"rate":4.6,"count":400}}
		]`))
	})
	mux.HandleFunc("/products/2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":2,"title":"Ring","price":9.99,"category":"jewelery","description":"Silver","rating":{"rate":4.6,"count":400}}`))
	})
	mux.HandleFunc("/products/categories", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["jewelery","men's clothing"]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestProductsCommand_JSONSorted(t *testing.T) {
	srv := fakeAPI(t)
	out, err := run(t, "products", "--catalog", srv.URL, "--sort", "price-asc", "--format", "json")
	require.NoError(t, err)

	var got []struct {
		ID    int    `json:"id"`
		Price string `json:"price"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].ID)
	assert.Equal(t, "9.99", got[0].Price)
}

func TestProductsCommand_Text(t *testing.T) {
	srv := fakeAPI(t)
	out, err := run(t, "products", "--catalog", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "109.95")
	assert.Contains(t, out, "Backpack")
}

func TestCategoriesCommand(t *testing.T) {
	srv := fakeAPI(t)
	out, err := run(t, "categories", "--catalog", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "men's clothing\tMen's Clothing")
}

func TestProductCommand(t *testing.T) {
	srv := fakeAPI(t)
	out, err := run(t, "product", "2", "--catalog", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "#2 Ring")
	assert.Contains(t, out, "$9.99")

	_, err = run(t, "product", "abc", "--catalog", srv.URL)
	assert.ErrorContains(t, err, "invalid product id")
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, "categories", "--format", "xml")
	assert.ErrorContains(t, err, "invalid format")
}
