// Package cart manages the shopping cart collection.
package cart

// Cart is a stored shopping cart.
type Cart struct {
	ID       string `json:"id"`
	Products []Item `json:"products"`
}

// Item is one product line in a cart. A cart holds at most one item per ProductID.
type Item struct {
	ProductID string  `json:"productId" validate:"required"`
	Quantity  float64 `json:"quantity"`
}

// CartPatch holds the fields of a merge-update. Nil fields are left untouched.
type CartPatch struct {
	Products *[]Item `json:"products,omitempty" validate:"omitempty,unique=ProductID,dive"`
}

func (patch CartPatch) apply(c Cart) Cart {
	if patch.Products != nil {
		c.Products = append(make([]Item, 0, len(*patch.Products)), *patch.Products...)
	}
	return c
}

// addItem increments the quantity of the matching item or appends a new one.
func (c *Cart) addItem(productID string, quantity float64) {
	for i := range c.Products {
		if c.Products[i].ProductID == productID {
			c.Products[i].Quantity += quantity
			return
		}
	}
	c.Products = append(c.Products, Item{ProductID: productID, Quantity: quantity})
}
