// Command seodemo runs a small demo storefront wired through the seo
// engine: a front page, a blog, a product catalog with categories and
// brands, and the admin metadata editor. It seeds example data on first
// start.
package main

import (
	"context"
	"fmt"
	"html"
	"io"
	"log"

	"github.com/a-h/templ"

	seo "github.com/nhgweb/seo"
	"github.com/nhgweb/seo/content"
)

func main() {
	cfg := seo.SiteConfig{
		Name:          seo.EnvOr("SITE_NAME", "Demo Shop"),
		URL:           seo.EnvOr("SITE_URL", "http://localhost:3000"),
		Description:   "A demo storefront.",
		Addr:          seo.EnvOr("ADDR", ":3000"),
		DatabasePath:  seo.EnvOr("DATABASE_PATH", "data/catalog.db"),
		AdminPassword: seo.MustEnv("ADMIN_PASSWORD"),
		SessionSecret: seo.MustEnv("SESSION_SECRET"),

		Currency:         "USD",
		RatingsEnabled:   true,
		PrettyPermalinks: true,
		TwitterUsername:  seo.EnvOr("TWITTER_USERNAME", ""),
	}

	app := seo.New(cfg, views(), seo.WithCustomRoutes(seedDemoData))
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

// page wraps body markup in a minimal layout with the head block.
func page(head templ.Component, body string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<!DOCTYPE html>\n<html>\n<head>\n"); err != nil {
			return err
		}
		if err := head.Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</head>\n<body>\n"+body+"\n</body>\n</html>\n"); err != nil {
			return err
		}
		return nil
	})
}

func views() seo.ViewFuncs {
	return seo.ViewFuncs{
		Page: func(head templ.Component, post *content.Post) templ.Component {
			if post == nil {
				return page(head, "<main></main>")
			}
			return page(head, "<main><h1>"+html.EscapeString(post.Title)+"</h1>"+post.Content+"</main>")
		},
		Product: func(head templ.Component, post *content.Post, product *content.Product) templ.Component {
			body := "<main><h1>" + html.EscapeString(post.Title) + "</h1>"
			if product != nil && product.Price != "" {
				body += "<p>$" + html.EscapeString(product.Price) + "</p>"
			}
			body += post.Content + "</main>"
			return page(head, body)
		},
		Archive: func(head templ.Component, heading string, posts []content.Post, pageNum, pages int) templ.Component {
			body := "<main><h1>" + html.EscapeString(heading) + "</h1><ul>"
			for _, p := range posts {
				body += "<li>" + html.EscapeString(p.Title) + "</li>"
			}
			body += fmt.Sprintf("</ul><p>Page %d of %d</p></main>", pageNum, pages)
			return page(head, body)
		},
		Search: func(head templ.Component, query string, posts []content.Post, pageNum, pages int) templ.Component {
			body := "<main><h1>Search: " + html.EscapeString(query) + "</h1><ul>"
			for _, p := range posts {
				body += "<li>" + html.EscapeString(p.Title) + "</li>"
			}
			body += "</ul></main>"
			return page(head, body)
		},
		AdminLogin: func(showError bool, csrfToken string) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				msg := ""
				if showError {
					msg = "<p>Wrong password.</p>"
				}
				_, err := io.WriteString(w, `<!DOCTYPE html><html><body>`+msg+
					`<form method="post" action="/admin/login/">`+
					`<input type="hidden" name="_csrf" value="`+html.EscapeString(csrfToken)+`">`+
					`<input type="password" name="password"><button>Log in</button></form></body></html>`)
				return err
			})
		},
		AdminEditor: func(form seo.MetaForm, message, csrfToken string) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				body := `<!DOCTYPE html><html><body><h1>` + html.EscapeString(form.EntityLabel) + `</h1>`
				if message != "" {
					body += "<p>" + html.EscapeString(message) + "</p>"
				}
				body += fmt.Sprintf(`<form method="post" action="/admin/meta/%s/%d/">`, form.Kind, form.ID) +
					`<input type="hidden" name="_csrf" value="` + html.EscapeString(csrfToken) + `">` +
					`<input name="title" value="` + html.EscapeString(form.Title) + `">` +
					`<textarea name="description">` + html.EscapeString(form.Description) + `</textarea>` +
					`<input name="robots" value="` + html.EscapeString(form.Robots) + `">` +
					`<input name="canonical" value="` + html.EscapeString(form.Canonical) + `">` +
					`<button>Save</button></form></body></html>`
				_, err := io.WriteString(w, body)
				return err
			})
		},
		NotFound: func(head templ.Component) templ.Component {
			return page(head, "<main><h1>Page not found</h1></main>")
		},
		ServerError: func() templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				_, err := io.WriteString(w, "<!DOCTYPE html><html><body><h1>Something went wrong</h1></body></html>")
				return err
			})
		},
	}
}

// seedDemoData populates an empty catalog with a few products, terms and
// posts so every route has something to serve.
func seedDemoData(app *seo.App) {
	if existing, _ := app.Store.PostBySlug(content.KindProduct, "whey-protein"); existing != nil {
		return
	}

	nutritionID, err := app.Store.SaveTerm(content.Term{
		Taxonomy: content.TaxProductCategory, Slug: "nutrition", Name: "Nutrition",
		Description: "Supplements and nutrition products.",
	})
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	proteinID, err := app.Store.SaveTerm(content.Term{
		Taxonomy: content.TaxProductCategory, Slug: "protein", Name: "Protein", Parent: nutritionID,
	})
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	brandID, err := app.Store.SaveTerm(content.Term{
		Taxonomy: content.TaxProductBrand, Slug: "peak", Name: "Peak",
	})
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	productID, err := app.Store.SavePost(content.Post{
		Slug: "whey-protein", Type: content.KindProduct, Title: "Whey Protein 900g",
		Excerpt: "Fast-absorbing whey protein.", Content: "<p>24g of protein per serving.</p>",
		Date: "2024-05-01", Status: content.StatusPublish,
	})
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if err := app.Store.SaveProduct(content.Product{
		PostID: productID, Kind: "simple", Price: "29.99", InStock: true,
		SKU: "WHEY-900", Weight: "0.9", RatingAvg: "4.6", RatingCount: 14, ReviewCount: 11,
	}); err != nil {
		log.Fatalf("seed: %v", err)
	}
	if err := app.Store.AttachPostTerm(productID, proteinID, true); err != nil {
		log.Fatalf("seed: %v", err)
	}
	if err := app.Store.AttachPostTerm(productID, brandID, false); err != nil {
		log.Fatalf("seed: %v", err)
	}
	if err := app.Store.SaveReview(content.Review{
		PostID: productID, Author: "Alice", Body: "Mixes well, tastes great.", Rating: 5, Date: "2024-06-10",
	}, true, 0); err != nil {
		log.Fatalf("seed: %v", err)
	}

	catID, err := app.Store.SaveTerm(content.Term{
		Taxonomy: content.TaxCategory, Slug: "training", Name: "Training",
	})
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	postID, err := app.Store.SavePost(content.Post{
		Slug: "protein-timing", Type: content.KindPost, Title: "Does Protein Timing Matter?",
		Excerpt: "A look at the anabolic window.", Content: "<p>Short answer: less than you think.</p>",
		Date: "2024-06-01", Status: content.StatusPublish,
	})
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if err := app.Store.AttachPostTerm(postID, catID, true); err != nil {
		log.Fatalf("seed: %v", err)
	}

	if _, err := app.Store.SavePost(content.Post{
		Slug: "about", Type: content.KindPage, Title: "About Us",
		Content: "<p>We sell supplements.</p>", Date: "2024-01-01", Status: content.StatusPublish,
	}); err != nil {
		log.Fatalf("seed: %v", err)
	}
}
