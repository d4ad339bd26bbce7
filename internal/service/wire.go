package service

import (
	"github.com/alexwatever/wept/internal/domain/cart"
	"github.com/alexwatever/wept/internal/domain/catalog"
	"github.com/alexwatever/wept/internal/domain/pagination"
)

// Wire types mirror the backend's JSON. Every field the schema may null is
// a pointer; the map functions below turn them into domain values.

type wirePageInfo struct {
	EndCursor   *string `json:"endCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}

type wireImage struct {
	ID        string  `json:"id"`
	SourceURL *string `json:"sourceUrl"`
	AltText   *string `json:"altText"`
	Title     *string `json:"title"`
}

type wirePost struct {
	ID      string  `json:"id"`
	Slug    *string `json:"slug"`
	Title   *string `json:"title"`
	Date    *string `json:"date"`
	Excerpt *string `json:"excerpt"`
	Content *string `json:"content"`
}

type wirePage struct {
	ID      string  `json:"id"`
	Slug    *string `json:"slug"`
	URI     *string `json:"uri"`
	Title   *string `json:"title"`
	Date    *string `json:"date"`
	Content *string `json:"content"`
}

type wireProduct struct {
	Typename         string     `json:"__typename"`
	ID               string     `json:"id"`
	DatabaseID       *int64     `json:"databaseId"`
	Slug             *string    `json:"slug"`
	Name             *string    `json:"name"`
	SKU              *string    `json:"sku"`
	Status           *string    `json:"status"`
	Description      *string    `json:"description"`
	ShortDescription *string    `json:"shortDescription"`
	Image            *wireImage `json:"image"`
	GalleryImages    *struct {
		Nodes []wireImage `json:"nodes"`
	} `json:"galleryImages"`

	// SimpleProduct only.
	Price            *string `json:"price"`
	RawPrice         *string `json:"rawPrice"`
	RegularPrice     *string `json:"regularPrice"`
	SalePrice        *string `json:"salePrice"`
	OnSale           *bool   `json:"onSale"`
	DateOnSaleFrom   *string `json:"dateOnSaleFrom"`
	DateOnSaleTo     *string `json:"dateOnSaleTo"`
	StockStatus      *string `json:"stockStatus"`
	StockQuantity    *int    `json:"stockQuantity"`
	SoldIndividually *bool   `json:"soldIndividually"`
	Purchasable      *bool   `json:"purchasable"`
	Virtual          *bool   `json:"virtual"`
	Downloadable     *bool   `json:"downloadable"`
	ReviewCount      *int    `json:"reviewCount"`
	Weight           *string `json:"weight"`
	Length           *string `json:"length"`
	Width            *string `json:"width"`
	Height           *string `json:"height"`
}

type wireCategory struct {
	ID          string                   `json:"id"`
	DatabaseID  *int64                   `json:"databaseId"`
	Slug        *string                  `json:"slug"`
	Name        *string                  `json:"name"`
	Description *string                  `json:"description"`
	Count       *int                     `json:"count"`
	Image       *wireImage               `json:"image"`
	Products    *connection[wireProduct] `json:"products"`
}

type wireMenu struct {
	Name      *string `json:"name"`
	MenuItems *struct {
		Nodes []wireMenuItem `json:"nodes"`
	} `json:"menuItems"`
}

type wireMenuItem struct {
	ID       string  `json:"id"`
	Label    *string `json:"label"`
	URL      *string `json:"url"`
	Path     *string `json:"path"`
	ParentID *string `json:"parentId"`
	Order    *int    `json:"order"`
}

type wireSettings struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	URL         *string `json:"url"`
	Language    *string `json:"language"`
}

type wireCart struct {
	Subtotal *string `json:"subtotal"`
	Total    *string `json:"total"`
	Contents *struct {
		Nodes []wireCartItem `json:"nodes"`
	} `json:"contents"`
}

type wireCartItem struct {
	Key      string  `json:"key"`
	Quantity *int    `json:"quantity"`
	Subtotal *string `json:"subtotal"`
	Total    *string `json:"total"`
	Product  *struct {
		Node *struct {
			ID         string  `json:"id"`
			DatabaseID *int64  `json:"databaseId"`
			Name       *string `json:"name"`
			Slug       *string `json:"slug"`
		} `json:"node"`
	} `json:"product"`
}

// connection is the generic shape of a list field: nodes plus page info.
type connection[W any] struct {
	PageInfo *wirePageInfo `json:"pageInfo"`
	Nodes    []W           `json:"nodes"`
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func num[T int | int64](p *T) T {
	if p == nil {
		return 0
	}
	return *p
}

func flag(p *bool) bool {
	return p != nil && *p
}

func mapPageInfo(w *wirePageInfo) *pagination.PageInfo {
	if w == nil {
		return nil
	}
	return &pagination.PageInfo{EndCursor: str(w.EndCursor), HasNextPage: w.HasNextPage}
}

// mapConnection converts a list field, keeping server order.
func mapConnection[W, T any](c connection[W], mapNode func(W) T) pagination.Collection[T] {
	items := make([]T, 0, len(c.Nodes))
	for _, n := range c.Nodes {
		items = append(items, mapNode(n))
	}
	return pagination.Collection[T]{Items: items, PageInfo: mapPageInfo(c.PageInfo)}
}

func mapImage(w *wireImage) *catalog.Image {
	if w == nil {
		return nil
	}
	return &catalog.Image{
		ID:        w.ID,
		SourceURL: str(w.SourceURL),
		AltText:   str(w.AltText),
		Title:     str(w.Title),
	}
}

func mapPost(w wirePost) catalog.Post {
	return catalog.Post{
		ID:      w.ID,
		Slug:    str(w.Slug),
		Title:   str(w.Title),
		Date:    str(w.Date),
		Excerpt: str(w.Excerpt),
		Content: str(w.Content),
	}
}

func mapPage(w wirePage) catalog.Page {
	return catalog.Page{
		ID:      w.ID,
		Slug:    str(w.Slug),
		URI:     str(w.URI),
		Title:   str(w.Title),
		Date:    str(w.Date),
		Content: str(w.Content),
	}
}

// normalizeProduct maps every product variant to catalog.Product.
// Identity, name, image and slug are kept for all variants; descriptive,
// pricing and inventory fields are only filled for simple products.
func normalizeProduct(w wireProduct) catalog.Product {
	p := catalog.Product{
		ID:         w.ID,
		DatabaseID: num(w.DatabaseID),
		Kind:       catalog.KindFromTypename(w.Typename),
		Slug:       str(w.Slug),
		Name:       str(w.Name),
		Image:      mapImage(w.Image),
	}
	if p.Kind != catalog.KindSimple {
		return p
	}

	p.SKU = str(w.SKU)
	p.Status = str(w.Status)
	p.Description = str(w.Description)
	p.ShortDescription = str(w.ShortDescription)
	p.DateOnSaleFrom = str(w.DateOnSaleFrom)
	p.DateOnSaleTo = str(w.DateOnSaleTo)
	if w.GalleryImages != nil {
		for i := range w.GalleryImages.Nodes {
			p.Gallery = append(p.Gallery, *mapImage(&w.GalleryImages.Nodes[i]))
		}
	}
	p.Commerce = &catalog.Commerce{
		Price:            str(w.Price),
		RawPrice:         str(w.RawPrice),
		RegularPrice:     str(w.RegularPrice),
		SalePrice:        str(w.SalePrice),
		OnSale:           flag(w.OnSale),
		StockStatus:      str(w.StockStatus),
		StockQuantity:    w.StockQuantity,
		SoldIndividually: flag(w.SoldIndividually),
		Purchasable:      flag(w.Purchasable),
		Virtual:          flag(w.Virtual),
		Downloadable:     flag(w.Downloadable),
		ReviewCount:      num(w.ReviewCount),
		Weight:           str(w.Weight),
		Length:           str(w.Length),
		Width:            str(w.Width),
		Height:           str(w.Height),
	}
	return p
}

func mapCategory(w wireCategory) catalog.ProductCategory {
	c := catalog.ProductCategory{
		ID:          w.ID,
		DatabaseID:  num(w.DatabaseID),
		Slug:        str(w.Slug),
		Name:        str(w.Name),
		Description: str(w.Description),
		Count:       num(w.Count),
		Image:       mapImage(w.Image),
	}
	if w.Products != nil {
		products := mapConnection(*w.Products, normalizeProduct)
		c.Products = &products
	}
	return c
}

func mapMenu(name string, w wireMenu) catalog.Menu {
	m := catalog.Menu{Name: str(w.Name), Items: []catalog.MenuItem{}}
	if m.Name == "" {
		m.Name = name
	}
	if w.MenuItems == nil {
		return m
	}
	for _, it := range w.MenuItems.Nodes {
		m.Items = append(m.Items, catalog.MenuItem{
			ID:       it.ID,
			Label:    str(it.Label),
			URL:      str(it.URL),
			Path:     str(it.Path),
			ParentID: str(it.ParentID),
			Order:    num(it.Order),
		})
	}
	return m
}

func mapSettings(w wireSettings) catalog.Settings {
	return catalog.Settings{
		Title:       str(w.Title),
		Description: str(w.Description),
		URL:         str(w.URL),
		Language:    str(w.Language),
	}
}

func mapCart(w wireCart) cart.Cart {
	c := cart.Cart{
		Items:    []cart.Item{},
		Subtotal: str(w.Subtotal),
		Total:    str(w.Total),
	}
	if w.Contents == nil {
		return c
	}
	for _, n := range w.Contents.Nodes {
		item := cart.Item{
			Key:      n.Key,
			Quantity: num(n.Quantity),
			Subtotal: str(n.Subtotal),
			Total:    str(n.Total),
		}
		if n.Product != nil && n.Product.Node != nil {
			item.Product = cart.ProductRef{
				ID:         n.Product.Node.ID,
				DatabaseID: num(n.Product.Node.DatabaseID),
				Name:       str(n.Product.Node.Name),
				Slug:       str(n.Product.Node.Slug),
			}
		}
		c.Items = append(c.Items, item)
	}
	return c
}
