package service

import "github.com/alexwatever/wept/internal/port/outbound"

const imageFields = `
fragment ImageFields on MediaItem {
  id
  sourceUrl
  altText
  title
}`

const productFields = `
fragment ProductFields on Product {
  __typename
  id
  databaseId
  slug
  name
  sku
  status
  description
  shortDescription
  image { ...ImageFields }
  galleryImages { nodes { ...ImageFields } }
  ... on SimpleProduct {
    price
    rawPrice: price(format: RAW)
    regularPrice
    salePrice
    onSale
    dateOnSaleFrom
    dateOnSaleTo
    stockStatus
    stockQuantity
    soldIndividually
    purchasable
    virtual
    downloadable
    reviewCount
    weight
    length
    width
    height
  }
}` + imageFields

const cartFields = `
fragment CartFields on Cart {
  subtotal
  total
  contents(first: 100) {
    nodes {
      key
      quantity
      subtotal
      total
      product {
        node {
          id
          databaseId
          name
          slug
        }
      }
    }
  }
}`

var (
	postBySlugQuery = outbound.Operation{Name: "PostBySlug", Query: `
query PostBySlug($slug: ID!) {
  post(id: $slug, idType: SLUG) {
    id
    slug
    title
    date
    excerpt
    content
  }
}`}

	postListQuery = outbound.Operation{Name: "PostList", Query: `
query PostList($first: Int!, $after: String) {
  posts(first: $first, after: $after) {
    pageInfo {
      endCursor
      hasNextPage
    }
    nodes {
      id
      slug
      title
      date
      excerpt
    }
  }
}`}

	pageBySlugQuery = outbound.Operation{Name: "PageBySlug", Query: `
query PageBySlug($slug: ID!) {
  page(id: $slug, idType: URI) {
    id
    slug
    uri
    title
    date
    content
  }
}`}

	pageListQuery = outbound.Operation{Name: "PageList", Query: `
query PageList($first: Int!, $after: String) {
  pages(first: $first, after: $after) {
    pageInfo {
      endCursor
      hasNextPage
    }
    nodes {
      id
      slug
      uri
      title
      date
    }
  }
}`}

	productBySlugQuery = outbound.Operation{Name: "ProductBySlug", Query: `
query ProductBySlug($slug: ID!) {
  product(id: $slug, idType: SLUG) {
    ...ProductFields
  }
}` + productFields}

	productListQuery = outbound.Operation{Name: "ProductList", Query: `
query ProductList($first: Int!, $after: String) {
  products(first: $first, after: $after) {
    pageInfo {
      endCursor
      hasNextPage
    }
    nodes {
      ...ProductFields
    }
  }
}` + productFields}

	productSearchQuery = outbound.Operation{Name: "ProductSearch", Query: `
query ProductSearch($search: String!, $first: Int!) {
  products(first: $first, where: { search: $search }) {
    nodes {
      ...ProductFields
    }
  }
}` + productFields}

	categoryListQuery = outbound.Operation{Name: "CategoryList", Query: `
query CategoryList($first: Int!, $after: String) {
  productCategories(first: $first, after: $after) {
    pageInfo {
      endCursor
      hasNextPage
    }
    nodes {
      id
      databaseId
      slug
      name
      description
      count
      image { ...ImageFields }
    }
  }
}` + imageFields}

	categoryBySlugQuery = outbound.Operation{Name: "CategoryBySlug", Query: `
query CategoryBySlug($slug: ID!) {
  productCategory(id: $slug, idType: SLUG) {
    id
    databaseId
    slug
    name
    description
    count
    image { ...ImageFields }
  }
}` + imageFields}

	categoryWithProductsQuery = outbound.Operation{Name: "CategoryWithProducts", Query: `
query CategoryWithProducts($slug: ID!, $first: Int!, $after: String) {
  productCategory(id: $slug, idType: SLUG) {
    id
    databaseId
    slug
    name
    description
    count
    image { ...ImageFields }
    products(first: $first, after: $after) {
      pageInfo {
        endCursor
        hasNextPage
      }
      nodes {
        ...ProductFields
      }
    }
  }
}` + productFields}

	menuQuery = outbound.Operation{Name: "Menu", Query: `
query Menu($name: ID!) {
  menu(id: $name, idType: NAME) {
    name
    menuItems(first: 100) {
      nodes {
        id
        label
        url
        path
        parentId
        order
      }
    }
  }
}`}

	generalSettingsQuery = outbound.Operation{Name: "GeneralSettings", Query: `
query GeneralSettings {
  generalSettings {
    title
    description
    url
    language
  }
}`}

	cartQuery = outbound.Operation{Name: "Cart", Query: `
query Cart {
  cart {
    ...CartFields
  }
}` + cartFields}

	addToCartMutation = outbound.Operation{Name: "AddToCart", Query: `
mutation AddToCart($productId: Int!, $quantity: Int!) {
  addToCart(input: { productId: $productId, quantity: $quantity }) {
    cart {
      ...CartFields
    }
  }
}` + cartFields}

	updateItemQuantitiesMutation = outbound.Operation{Name: "UpdateItemQuantities", Query: `
mutation UpdateItemQuantities($key: ID!, $quantity: Int!) {
  updateItemQuantities(input: { items: [{ key: $key, quantity: $quantity }] }) {
    cart {
      ...CartFields
    }
  }
}` + cartFields}

	removeItemsMutation = outbound.Operation{Name: "RemoveItemsFromCart", Query: `
mutation RemoveItemsFromCart($key: ID!) {
  removeItemsFromCart(input: { keys: [$key] }) {
    cart {
      ...CartFields
    }
  }
}` + cartFields}
)
