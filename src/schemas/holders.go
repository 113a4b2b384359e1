package schemas

import "investmentapp/src/models"

type SignUpRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// HolderRequest edits the authenticated holder. The email always comes from
// the token, never from the body.
type HolderRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type AddressRequest struct {
	ID      int    `json:"id,omitempty"`
	Street  string `json:"street"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`
}

func (a AddressRequest) ToModel() models.Address {
	return models.Address{ID: a.ID, Street: a.Street, State: a.State, Zipcode: a.Zipcode}
}

type AddressResponse struct {
	ID      int    `json:"id"`
	Street  string `json:"street"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`
}

type HolderResponse struct {
	ID        int              `json:"id"`
	Email     string           `json:"email"`
	FirstName string           `json:"firstName"`
	LastName  string           `json:"lastName"`
	Address   *AddressResponse `json:"address,omitempty"`
}

func NewHolderResponse(h *models.Holder, a *models.Address) HolderResponse {
	res := HolderResponse{ID: h.ID, Email: h.Email, FirstName: h.FirstName, LastName: h.LastName}
	if a != nil {
		res.Address = &AddressResponse{ID: a.ID, Street: a.Street, State: a.State, Zipcode: a.Zipcode}
	}
	return res
}
