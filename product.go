package seo

import (
	"strconv"
	"strings"
	"time"

	"github.com/nhgweb/seo/content"
	"github.com/nhgweb/seo/document"
)

// UN/CEFACT unit codes for the supported store units.
var (
	weightUnitCodes = map[string]string{
		"lbs": "LBR",
		"kg":  "KGM",
		"g":   "GRM",
		"oz":  "ONZ",
	}
	dimensionUnitCodes = map[string]string{
		"in": "INH",
		"m":  "MTR",
		"cm": "CMT",
		"mm": "MMT",
		"yd": "YRD",
	}
)

const reviewLimit = 5

// ProductSchema assembles the Product JSON-LD node for single product
// pages.
type ProductSchema struct {
	cfg   SiteConfig
	src   content.Source
	com   content.Commerce
	links document.Links
	now   func() time.Time
}

// NewProductSchema wires a product assembler against the given content
// accessors.
func NewProductSchema(cfg SiteConfig, src content.Source, com content.Commerce, links document.Links) *ProductSchema {
	return &ProductSchema{cfg: cfg, src: src, com: com, links: links, now: time.Now}
}

// Node builds the structured-data node for the product backing doc's
// queried post. Returns nil when the post is not a product, the product
// record is missing, or none of offers, aggregate rating and reviews could
// be populated.
func (p *ProductSchema) Node(doc *document.Document) *Node {
	post := doc.Query().Post
	if post == nil || post.Type != content.KindProduct {
		return nil
	}
	product, err := p.com.ProductByPostID(post.ID)
	if err != nil || product == nil {
		return nil
	}

	permalink := p.links.PostURL(post)

	n := NewNode("Product")
	// The fragment keeps this @id distinct from the BreadcrumbList one.
	n.Set("@id", permalink+"#product")
	n.Set("name", post.Title)
	n.Set("url", permalink)
	n.Set("description", doc.Description())
	if path := p.categoryPath(post.ID); path != "" {
		n.Set("category", path)
	}
	n.Set("releaseDate", post.Date)

	// SKU falls back to the post id.
	if product.SKU != "" {
		n.Set("sku", product.SKU)
	} else {
		n.Set("sku", strconv.FormatInt(post.ID, 10))
	}

	p.setIdentifier(n, product)
	p.setBrand(n, post.ID)
	p.setOffers(n, post, product)
	p.setRatings(n, post, product)
	p.setWeight(n, product)
	p.setImages(n, post, product)
	p.setDimensions(n, product)

	// Bare identity nodes carry no value for search engines.
	if !n.Has("offers") && !n.Has("aggregateRating") && !n.Has("review") {
		return nil
	}
	return n
}

// setIdentifier classifies the trade identifier by digit length.
func (p *ProductSchema) setIdentifier(n *Node, product *content.Product) {
	gtin := strings.TrimSpace(product.GTIN)
	if gtin == "" {
		return
	}
	key := "gtin"
	switch len(gtin) {
	case 8:
		key = "gtin8"
	case 12:
		key = "gtin12"
	case 13:
		key = "gtin13"
	case 14:
		key = "gtin14"
	}
	n.Set(key, gtin)
}

func (p *ProductSchema) setBrand(n *Node, postID int64) {
	brands, err := p.src.TermsForPost(postID, content.TaxProductBrand)
	if err != nil || len(brands) == 0 {
		return
	}
	brand := NewNode("Thing")
	brand.Set("name", brands[0].Name)
	n.Set("brand", brand)
}

// categoryPath joins the primary product category with its ancestors,
// root first. A top-level category yields just its own name.
func (p *ProductSchema) categoryPath(postID int64) string {
	categories, err := p.src.TermsForPost(postID, content.TaxProductCategory)
	if err != nil || len(categories) == 0 {
		return ""
	}
	primary := categories[0]
	if primary.Parent == 0 {
		return primary.Name
	}
	ancestors, err := p.src.TermAncestors(primary.ID)
	if err != nil {
		return primary.Name
	}
	names := make([]string, 0, len(ancestors)+1)
	for _, a := range ancestors {
		names = append(names, a.Name)
	}
	names = append(names, primary.Name)
	return strings.Join(FilterEmpty(names), " > ")
}

func (p *ProductSchema) setOffers(n *Node, post *content.Post, product *content.Product) {
	if product.Price == "" {
		return
	}

	// Prices hold until the end of next year unless a nearer sale end date
	// applies.
	validUntil := p.now().AddDate(1, 0, 0).Format("2006") + "-12-31"

	var offer *Node
	if product.Kind == "variable" {
		prices, err := p.com.VariationPrices(post.ID)
		if err != nil {
			return
		}
		if prices.Low == prices.High {
			offer = NewNode("Offer")
			offer.Set("price", prices.Low)
			offer.Set("priceValidUntil", validUntil)
			offer.Set("priceSpecification", p.priceSpecification(prices.Low))
		} else {
			offer = NewNode("AggregateOffer")
			offer.Set("lowPrice", prices.Low)
			offer.Set("highPrice", prices.High)
			offer.Set("offerCount", prices.Count)
		}
	} else {
		if product.OnSale && product.SaleEnd != "" && product.SaleEnd < validUntil {
			validUntil = product.SaleEnd
		}
		offer = NewNode("Offer")
		offer.Set("price", product.Price)
		offer.Set("priceValidUntil", validUntil)
		offer.Set("priceSpecification", p.priceSpecification(product.Price))
	}

	offer.Set("priceCurrency", p.cfg.Currency)
	availability := "http://schema.org/OutOfStock"
	if product.InStock {
		availability = "http://schema.org/InStock"
	}
	offer.Set("availability", availability)
	offer.Set("url", p.links.PostURL(post))
	offer.Set("itemCondition", "NewCondition")
	seller := NewNode("Organization")
	seller.Set("name", p.cfg.Name)
	seller.Set("url", p.cfg.URL)
	offer.Set("seller", seller)

	n.Set("offers", []*Node{offer})
}

func (p *ProductSchema) priceSpecification(price string) map[string]string {
	tax := "false"
	if p.cfg.PricesIncludeTax {
		tax = "true"
	}
	return map[string]string{
		"price":                 price,
		"priceCurrency":         p.cfg.Currency,
		"valueAddedTaxIncluded": tax,
	}
}

func (p *ProductSchema) setRatings(n *Node, post *content.Post, product *content.Product) {
	if !p.cfg.RatingsEnabled || product.RatingCount < 1 {
		return
	}

	rating := NewNode("AggregateRating")
	rating.Set("ratingValue", product.RatingAvg)
	rating.Set("bestRating", "5")
	rating.Set("ratingCount", product.RatingCount)
	rating.Set("reviewCount", product.ReviewCount)
	n.Set("aggregateRating", rating)

	reviews, err := p.src.ApprovedReviews(post.ID, reviewLimit)
	if err != nil || len(reviews) == 0 {
		return
	}
	nodes := make([]*Node, 0, len(reviews))
	for _, r := range reviews {
		review := NewNode("Review")
		reviewRating := NewNode("Rating")
		reviewRating.Set("bestRating", "5")
		reviewRating.Set("ratingValue", strconv.Itoa(r.Rating))
		reviewRating.Set("worstRating", "1")
		review.Set("reviewRating", reviewRating)
		author := NewNode("Person")
		author.Set("name", r.Author)
		review.Set("author", author)
		review.Set("reviewBody", r.Body)
		review.Set("datePublished", r.Date)
		nodes = append(nodes, review)
	}
	n.Set("review", nodes)
}

func (p *ProductSchema) setWeight(n *Node, product *content.Product) {
	if product.Weight == "" {
		return
	}
	code, ok := weightUnitCodes[p.cfg.WeightUnit]
	if !ok {
		code = "LBR"
	}
	n.Set("weight", quantitativeValue(code, product.Weight))
}

func (p *ProductSchema) setDimensions(n *Node, product *content.Product) {
	if product.Height == "" && product.Width == "" && product.Length == "" {
		return
	}
	code := dimensionUnitCodes[p.cfg.DimensionUnit]
	n.Set("height", quantitativeValue(code, product.Height))
	n.Set("width", quantitativeValue(code, product.Width))
	n.Set("depth", quantitativeValue(code, product.Length))
}

func (p *ProductSchema) setImages(n *Node, post *content.Post, product *content.Product) {
	if post.FeaturedID == 0 {
		return
	}
	ids := append([]int64{post.FeaturedID}, product.GalleryIDs...)
	images := make([]*Node, 0, len(ids))
	for _, id := range ids {
		ref, err := p.src.AttachmentByID(id)
		if err != nil || ref == nil {
			continue
		}
		img := NewNode("ImageObject")
		img.Set("url", ref.URL)
		img.Set("height", ref.Height)
		img.Set("width", ref.Width)
		images = append(images, img)
	}
	if len(images) > 0 {
		n.Set("image", images)
	}
}

func quantitativeValue(code, value string) *Node {
	n := NewNode("QuantitativeValue")
	n.Set("unitCode", code)
	n.Set("value", value)
	return n
}
