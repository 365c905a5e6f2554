package reducer

import (
	"github.com/shopspring/decimal"

	"github.com/roach88/procount/internal/domain"
)

const (
	KindAddMenuItem                Kind = "ADD_MENU_ITEM"
	KindUpdateMenuItem             Kind = "UPDATE_MENU_ITEM"
	KindDeleteMenuItem             Kind = "DELETE_MENU_ITEM"
	KindAddIngredient              Kind = "ADD_INGREDIENT"
	KindAddEcommerceProduct        Kind = "ADD_ECOMMERCE_PRODUCT"
	KindUpdateEcommerceProduct     Kind = "UPDATE_ECOMMERCE_PRODUCT"
	KindDeleteEcommerceProduct     Kind = "DELETE_ECOMMERCE_PRODUCT"
	KindCreateEcommerceOrder       Kind = "CREATE_ECOMMERCE_ORDER"
	KindUpdateEcommerceOrderStatus Kind = "UPDATE_ECOMMERCE_ORDER_STATUS"
	KindAddAutomotiveProduct       Kind = "ADD_AUTOMOTIVE_PRODUCT"
	KindUpdateAutomotiveProduct    Kind = "UPDATE_AUTOMOTIVE_PRODUCT"
	KindDeleteAutomotiveProduct    Kind = "DELETE_AUTOMOTIVE_PRODUCT"
	KindAddServiceWorkOrder        Kind = "ADD_SERVICE_WORK_ORDER"
	KindAddPropertyListing         Kind = "ADD_PROPERTY_LISTING"
	KindUpdatePropertyListing      Kind = "UPDATE_PROPERTY_LISTING"
	KindDeletePropertyListing      Kind = "DELETE_PROPERTY_LISTING"
	KindAddBlueprint               Kind = "ADD_BLUEPRINT"
	KindUpdateBlueprint            Kind = "UPDATE_BLUEPRINT"
	KindDeleteBlueprint            Kind = "DELETE_BLUEPRINT"
	KindAddTourPackage             Kind = "ADD_TOUR_PACKAGE"
	KindUpdateTourPackage          Kind = "UPDATE_TOUR_PACKAGE"
	KindDeleteTourPackage          Kind = "DELETE_TOUR_PACKAGE"
	KindAddTourBooking             Kind = "ADD_TOUR_BOOKING"
	KindAddPersonalTransaction     Kind = "ADD_PERSONAL_TRANSACTION"
	KindDeletePersonalTransaction  Kind = "DELETE_PERSONAL_TRANSACTION"
	KindUpdatePersonalBudget       Kind = "UPDATE_PERSONAL_BUDGET"
)

// editVertical copies the vertical data selected by get, lets fn change the
// copy and installs it with set. A tenant without that vertical is left alone.
func editVertical[V any](s *State, companyID string, get func(*CompanyData) *V, set func(*CompanyData, *V), fn func(*V) bool) *State {
	return s.editTenant(companyID, func(cd *CompanyData) bool {
		cur := get(cd)
		if cur == nil {
			return false
		}
		v := *cur
		if !fn(&v) {
			return false
		}
		set(cd, &v)
		return true
	})
}

func ecommerce(cd *CompanyData) *EcommerceData { return cd.Ecommerce }
func setEcommerce(cd *CompanyData, v *EcommerceData) { cd.Ecommerce = v }
func automotive(cd *CompanyData) *AutomotiveData { return cd.Automotive }
func setAutomotive(cd *CompanyData, v *AutomotiveData) { cd.Automotive = v }
func realEstate(cd *CompanyData) *RealEstateData { return cd.RealEstate }
func setRealEstate(cd *CompanyData, v *RealEstateData) { cd.RealEstate = v }
func manufacturing(cd *CompanyData) *ManufacturingData { return cd.Manufacturing }
func setManufacturing(cd *CompanyData, v *ManufacturingData) { cd.Manufacturing = v }
func tourism(cd *CompanyData) *TourismData { return cd.Tourism }
func setTourism(cd *CompanyData, v *TourismData) { cd.Tourism = v }
func personal(cd *CompanyData) *PersonalData { return cd.Personal }
func setPersonal(cd *CompanyData, v *PersonalData) { cd.Personal = v }

// Restaurant.

type AddMenuItem struct {
	CompanyID string          `json:"companyId"`
	Item      domain.MenuItem `json:"item"`
}

func (AddMenuItem) Kind() Kind { return KindAddMenuItem }

func (a AddMenuItem) apply(r *Reducer, s *State) *State {
	m := a.Item
	m.ID = r.idOr(m.ID, "menu")
	return s.editRestaurant(a.CompanyID, func(_ *CompanyData, rd *RestaurantData) bool {
		rd.MenuItems = appended(rd.MenuItems, m)
		return true
	})
}

type UpdateMenuItem struct {
	CompanyID string          `json:"companyId"`
	Item      domain.MenuItem `json:"item"`
}

func (UpdateMenuItem) Kind() Kind { return KindUpdateMenuItem }

func (a UpdateMenuItem) apply(_ *Reducer, s *State) *State {
	return s.editRestaurant(a.CompanyID, func(_ *CompanyData, rd *RestaurantData) bool {
		items, ok := replaced(rd.MenuItems, a.Item)
		rd.MenuItems = items
		return ok
	})
}

type DeleteMenuItem struct {
	CompanyID string `json:"companyId"`
	ItemID    string `json:"itemId"`
}

func (DeleteMenuItem) Kind() Kind { return KindDeleteMenuItem }

func (a DeleteMenuItem) apply(_ *Reducer, s *State) *State {
	return s.editRestaurant(a.CompanyID, func(_ *CompanyData, rd *RestaurantData) bool {
		items, ok := removed(rd.MenuItems, a.ItemID)
		rd.MenuItems = items
		return ok
	})
}

type AddIngredient struct {
	CompanyID  string            `json:"companyId"`
	Ingredient domain.Ingredient `json:"ingredient"`
}

func (AddIngredient) Kind() Kind { return KindAddIngredient }

func (a AddIngredient) apply(r *Reducer, s *State) *State {
	in := a.Ingredient
	in.ID = r.idOr(in.ID, "ing")
	if in.StockByBranch == nil {
		in.StockByBranch = map[string]decimal.Decimal{}
	}
	return s.editRestaurant(a.CompanyID, func(_ *CompanyData, rd *RestaurantData) bool {
		if indexOf(rd.Ingredients, in.ID) >= 0 {
			return false
		}
		rd.Ingredients = appended(rd.Ingredients, in)
		return true
	})
}

// E-commerce.

type AddEcommerceProduct struct {
	CompanyID string                  `json:"companyId"`
	Product   domain.EcommerceProduct `json:"product"`
}

func (AddEcommerceProduct) Kind() Kind { return KindAddEcommerceProduct }

func (a AddEcommerceProduct) apply(r *Reducer, s *State) *State {
	p := a.Product
	p.ID = r.idOr(p.ID, "ep")
	return editVertical(s, a.CompanyID, ecommerce, setEcommerce, func(v *EcommerceData) bool {
		v.Products = appended(v.Products, p)
		return true
	})
}

type UpdateEcommerceProduct struct {
	CompanyID string                  `json:"companyId"`
	Product   domain.EcommerceProduct `json:"product"`
}

func (UpdateEcommerceProduct) Kind() Kind { return KindUpdateEcommerceProduct }

func (a UpdateEcommerceProduct) apply(_ *Reducer, s *State) *State {
	return editVertical(s, a.CompanyID, ecommerce, setEcommerce, func(v *EcommerceData) bool {
		products, ok := replaced(v.Products, a.Product)
		v.Products = products
		return ok
	})
}

type DeleteEcommerceProduct struct {
	CompanyID string `json:"companyId"`
	ProductID string `json:"productId"`
}

func (DeleteEcommerceProduct) Kind() Kind { return KindDeleteEcommerceProduct }

func (a DeleteEcommerceProduct) apply(_ *Reducer, s *State) *State {
	return editVertical(s, a.CompanyID, ecommerce, setEcommerce, func(v *EcommerceData) bool {
		products, ok := removed(v.Products, a.ProductID)
		v.Products = products
		return ok
	})
}

// CreateEcommerceOrder places a storefront order. A zero total is computed
// from the items.
type CreateEcommerceOrder struct {
	CompanyID string                `json:"companyId"`
	Order     domain.EcommerceOrder `json:"order"`
}

func (CreateEcommerceOrder) Kind() Kind { return KindCreateEcommerceOrder }

func (a CreateEcommerceOrder) apply(r *Reducer, s *State) *State {
	o := a.Order
	o.ID = r.idOr(o.ID, "ecom")
	o.CreatedAt = r.timeOr(o.CreatedAt)
	o.Status = "pending"
	if o.TotalAmount.IsZero() {
		for _, it := range o.Items {
			o.TotalAmount = o.TotalAmount.Add(it.Quantity.Mul(it.UnitPrice))
		}
	}
	if o.CustomerID == "" && s.CurrentCustomer != nil {
		o.CustomerID = s.CurrentCustomer.ID
	}
	return editVertical(s, a.CompanyID, ecommerce, setEcommerce, func(v *EcommerceData) bool {
		v.Orders = appended(v.Orders, o)
		return true
	})
}

type UpdateEcommerceOrderStatus struct {
	CompanyID string `json:"companyId"`
	OrderID   string `json:"orderId"`
	Status    string `json:"status"`
}

func (UpdateEcommerceOrderStatus) Kind() Kind { return KindUpdateEcommerceOrderStatus }

func (a UpdateEcommerceOrderStatus) apply(_ *Reducer, s *State) *State {
	return editVertical(s, a.CompanyID, ecommerce, setEcommerce, func(v *EcommerceData) bool {
		orders, ok := updated(v.Orders, a.OrderID, func(o *domain.EcommerceOrder) { o.Status = a.Status })
		v.Orders = orders
		return ok
	})
}

// Automotive.

type AddAutomotiveProduct struct {
	CompanyID string                   `json:"companyId"`
	Product   domain.AutomotiveProduct `json:"product"`
}

func (AddAutomotiveProduct) Kind() Kind { return KindAddAutomotiveProduct }

func (a AddAutomotiveProduct) apply(r *Reducer, s *State) *State {
	p := a.Product
	p.ID = r.idOr(p.ID, "auto")
	return editVertical(s, a.CompanyID, automotive, setAutomotive, func(v *AutomotiveData) bool {
		v.Products = appended(v.Products, p)
		return true
	})
}

type UpdateAutomotiveProduct struct {
	CompanyID string                   `json:"companyId"`
	Product   domain.AutomotiveProduct `json:"product"`
}

func (UpdateAutomotiveProduct) Kind() Kind { return KindUpdateAutomotiveProduct }

func (a UpdateAutomotiveProduct) apply(_ *Reducer, s *State) *State {
	return editVertical(s, a.CompanyID, automotive, setAutomotive, func(v *AutomotiveData) bool {
		products, ok := replaced(v.Products, a.Product)
		v.Products = products
		return ok
	})
}

type DeleteAutomotiveProduct struct {
	CompanyID string `json:"companyId"`
	ProductID string `json:"productId"`
}

func (DeleteAutomotiveProduct) Kind() Kind { return KindDeleteAutomotiveProduct }

func (a DeleteAutomotiveProduct) apply(_ *Reducer, s *State) *State {
	return editVertical(s, a.CompanyID, automotive, setAutomotive, func(v *AutomotiveData) bool {
		products, ok := removed(v.Products, a.ProductID)
		v.Products = products
		return ok
	})
}

type AddServiceWorkOrder struct {
	CompanyID string                  `json:"companyId"`
	WorkOrder domain.ServiceWorkOrder `json:"workOrder"`
}

func (AddServiceWorkOrder) Kind() Kind { return KindAddServiceWorkOrder }

func (a AddServiceWorkOrder) apply(r *Reducer, s *State) *State {
	w := a.WorkOrder
	w.ID = r.idOr(w.ID, "swo")
	w.CreatedAt = r.timeOr(w.CreatedAt)
	if w.Status == "" {
		w.Status = "open"
	}
	return editVertical(s, a.CompanyID, automotive, setAutomotive, func(v *AutomotiveData) bool {
		v.WorkOrders = appended(v.WorkOrders, w)
		return true
	})
}

// Real estate.

type AddPropertyListing struct {
	CompanyID string                 `json:"companyId"`
	Listing   domain.PropertyListing `json:"listing"`
}

func (AddPropertyListing) Kind() Kind { return KindAddPropertyListing }

func (a AddPropertyListing) apply(r *Reducer, s *State) *State {
	l := a.Listing
	l.ID = r.idOr(l.ID, "pl")
	if l.Status == "" {
		l.Status = "available"
	}
	return editVertical(s, a.CompanyID, realEstate, setRealEstate, func(v *RealEstateData) bool {
		v.Listings = appended(v.Listings, l)
		return true
	})
}

type UpdatePropertyListing struct {
	CompanyID string                 `json:"companyId"`
	Listing   domain.PropertyListing `json:"listing"`
}

func (UpdatePropertyListing) Kind() Kind { return KindUpdatePropertyListing }

func (a UpdatePropertyListing) apply(_ *Reducer, s *State) *State {
	return editVertical(s, a.CompanyID, realEstate, setRealEstate, func(v *RealEstateData) bool {
		listings, ok := replaced(v.Listings, a.Listing)
		v.Listings = listings
		return ok
	})
}

type DeletePropertyListing struct {
	CompanyID string `json:"companyId"`
	ListingID string `json:"listingId"`
}

func (DeletePropertyListing) Kind() Kind { return KindDeletePropertyListing }

func (a DeletePropertyListing) apply(_ *Reducer, s *State) *State {
	return editVertical(s, a.CompanyID, realEstate, setRealEstate, func(v *RealEstateData) bool {
		listings, ok := removed(v.Listings, a.ListingID)
		v.Listings = listings
		return ok
	})
}

// Manufacturing.

type AddBlueprint struct {
	CompanyID string           `json:"companyId"`
	Blueprint domain.Blueprint `json:"blueprint"`
}

func (AddBlueprint) Kind() Kind { return KindAddBlueprint }

func (a AddBlueprint) apply(r *Reducer, s *State) *State {
	b := a.Blueprint
	b.ID = r.idOr(b.ID, "bp")
	return editVertical(s, a.CompanyID, manufacturing, setManufacturing, func(v *ManufacturingData) bool {
		v.Blueprints = appended(v.Blueprints, b)
		return true
	})
}

type UpdateBlueprint struct {
	CompanyID string           `json:"companyId"`
	Blueprint domain.Blueprint `json:"blueprint"`
}

func (UpdateBlueprint) Kind() Kind { return KindUpdateBlueprint }

func (a UpdateBlueprint) apply(_ *Reducer, s *State) *State {
	return editVertical(s, a.CompanyID, manufacturing, setManufacturing, func(v *ManufacturingData) bool {
		bps, ok := replaced(v.Blueprints, a.Blueprint)
		v.Blueprints = bps
		return ok
	})
}

type DeleteBlueprint struct {
	CompanyID   string `json:"companyId"`
	BlueprintID string `json:"blueprintId"`
}

func (DeleteBlueprint) Kind() Kind { return KindDeleteBlueprint }

func (a DeleteBlueprint) apply(_ *Reducer, s *State) *State {
	return editVertical(s, a.CompanyID, manufacturing, setManufacturing, func(v *ManufacturingData) bool {
		bps, ok := removed(v.Blueprints, a.BlueprintID)
		v.Blueprints = bps
		return ok
	})
}

// Tourism.

type AddTourPackage struct {
	CompanyID string             `json:"companyId"`
	Package   domain.TourPackage `json:"tourPackage"`
}

func (AddTourPackage) Kind() Kind { return KindAddTourPackage }

func (a AddTourPackage) apply(r *Reducer, s *State) *State {
	p := a.Package
	p.ID = r.idOr(p.ID, "tp")
	return editVertical(s, a.CompanyID, tourism, setTourism, func(v *TourismData) bool {
		v.Packages = appended(v.Packages, p)
		return true
	})
}

type UpdateTourPackage struct {
	CompanyID string             `json:"companyId"`
	Package   domain.TourPackage `json:"tourPackage"`
}

func (UpdateTourPackage) Kind() Kind { return KindUpdateTourPackage }

func (a UpdateTourPackage) apply(_ *Reducer, s *State) *State {
	return editVertical(s, a.CompanyID, tourism, setTourism, func(v *TourismData) bool {
		pkgs, ok := replaced(v.Packages, a.Package)
		v.Packages = pkgs
		return ok
	})
}

type DeleteTourPackage struct {
	CompanyID string `json:"companyId"`
	PackageID string `json:"packageId"`
}

func (DeleteTourPackage) Kind() Kind { return KindDeleteTourPackage }

func (a DeleteTourPackage) apply(_ *Reducer, s *State) *State {
	return editVertical(s, a.CompanyID, tourism, setTourism, func(v *TourismData) bool {
		pkgs, ok := removed(v.Packages, a.PackageID)
		v.Packages = pkgs
		return ok
	})
}

// AddTourBooking books seats on a package. The booking is refused when the
// package lacks the seats; otherwise the seats are taken from the package.
type AddTourBooking struct {
	CompanyID string             `json:"companyId"`
	Booking   domain.TourBooking `json:"booking"`
}

func (AddTourBooking) Kind() Kind { return KindAddTourBooking }

func (a AddTourBooking) apply(r *Reducer, s *State) *State {
	b := a.Booking
	if b.Seats <= 0 {
		return s
	}
	b.ID = r.idOr(b.ID, "tb")
	b.CreatedAt = r.timeOr(b.CreatedAt)
	return editVertical(s, a.CompanyID, tourism, setTourism, func(v *TourismData) bool {
		pkg, ok := find(v.Packages, b.PackageID)
		if !ok || pkg.SeatsAvailable < b.Seats {
			return false
		}
		if b.Total.IsZero() {
			b.Total = pkg.Price.Mul(decimal.NewFromInt(int64(b.Seats)))
		}
		v.Packages, _ = updated(v.Packages, pkg.ID, func(p *domain.TourPackage) { p.SeatsAvailable -= b.Seats })
		v.Bookings = appended(v.Bookings, b)
		return true
	})
}

// Personal finance.

type AddPersonalTransaction struct {
	CompanyID   string                     `json:"companyId"`
	Transaction domain.PersonalTransaction `json:"transaction"`
}

func (AddPersonalTransaction) Kind() Kind { return KindAddPersonalTransaction }

func (a AddPersonalTransaction) apply(r *Reducer, s *State) *State {
	t := a.Transaction
	t.ID = r.idOr(t.ID, "ptx")
	t.Date = r.timeOr(t.Date)
	return editVertical(s, a.CompanyID, personal, setPersonal, func(v *PersonalData) bool {
		v.Transactions = appended(v.Transactions, t)
		return true
	})
}

type DeletePersonalTransaction struct {
	CompanyID     string `json:"companyId"`
	TransactionID string `json:"transactionId"`
}

func (DeletePersonalTransaction) Kind() Kind { return KindDeletePersonalTransaction }

func (a DeletePersonalTransaction) apply(_ *Reducer, s *State) *State {
	return editVertical(s, a.CompanyID, personal, setPersonal, func(v *PersonalData) bool {
		txs, ok := removed(v.Transactions, a.TransactionID)
		v.Transactions = txs
		return ok
	})
}

// UpdatePersonalBudget sets the spending limit of a category, creating the
// budget on first use.
type UpdatePersonalBudget struct {
	CompanyID string          `json:"companyId"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
}

func (UpdatePersonalBudget) Kind() Kind { return KindUpdatePersonalBudget }

func (a UpdatePersonalBudget) apply(r *Reducer, s *State) *State {
	if a.Category == "" {
		return s
	}
	return editVertical(s, a.CompanyID, personal, setPersonal, func(v *PersonalData) bool {
		for _, b := range v.Budgets {
			if b.Category == a.Category {
				if b.Limit.Equal(a.Amount) {
					return false
				}
				v.Budgets, _ = updated(v.Budgets, b.ID, func(x *domain.PersonalBudget) { x.Limit = a.Amount })
				return true
			}
		}
		v.Budgets = appended(v.Budgets, domain.PersonalBudget{
			ID:       r.newID("bud"),
			Category: a.Category,
			Limit:    a.Amount,
		})
		return true
	})
}
