package model

// ModelApartment is a reusable apartment floor plan inside a building.
type ModelApartment struct {
	Meta             `bson:",inline"`
	BuiltArea        string  `bson:"metrosconstruccion" json:"metrosconstruccion"`
	Levels           string  `bson:"niveles" json:"niveles"`
	Rooms            *Number `bson:"cuartos" json:"cuartos"`
	Bathrooms        *Number `bson:"baños" json:"baños"`
	Folio            string  `bson:"folio" json:"folio"`
	Partida          string  `bson:"partida" json:"partida"`
	DicabiAddress    string  `bson:"direccionDicabi" json:"direccionDicabi"`
	Longitude        string  `bson:"longitud" json:"longitud"`
	Latitude         string  `bson:"latitud" json:"latitud"`
	Number           string  `bson:"numero" json:"numero"`
	BuildingID       string  `bson:"edificio_idedificio" json:"edificio_idedificio"`
	BuildingBranchID string  `bson:"edificio_sucursal_idsucursal" json:"edificio_sucursal_idsucursal"`
}

func (m *ModelApartment) Normalize() {
	trim(&m.BuiltArea, &m.Levels, &m.Folio, &m.Partida, &m.DicabiAddress,
		&m.Longitude, &m.Latitude, &m.Number, &m.BuildingID, &m.BuildingBranchID)
}

func (m *ModelApartment) Validate() FieldErrors {
	var c checker
	c.required("metrosconstruccion", m.BuiltArea, "")
	c.required("niveles", m.Levels, "")
	if c.number("cuartos", m.Rooms, "") {
		c.nonNegative("cuartos", m.Rooms, "")
	}
	if c.number("baños", m.Bathrooms, "") {
		c.nonNegative("baños", m.Bathrooms, "")
	}
	c.required("folio", m.Folio, "")
	c.required("partida", m.Partida, "")
	c.required("direccionDicabi", m.DicabiAddress, "")
	c.required("longitud", m.Longitude, "")
	c.required("latitud", m.Latitude, "")
	c.required("numero", m.Number, "")
	c.required("edificio_idedificio", m.BuildingID, "El edificio es obligatorio")
	c.required("edificio_sucursal_idsucursal", m.BuildingBranchID, "La sucursal del edificio es obligatoria")
	return c.errs
}

// ModelResidence is a reusable house floor plan inside a residential development.
type ModelResidence struct {
	Meta          `bson:",inline"`
	Land          string  `bson:"terreno" json:"terreno"`
	BuiltArea     string  `bson:"metrosconstruccion" json:"metrosconstruccion"`
	Levels        string  `bson:"niveles" json:"niveles"`
	Rooms         *Number `bson:"cuartos" json:"cuartos"`
	Folio         string  `bson:"folio" json:"folio"`
	Partida       string  `bson:"partida" json:"partida"`
	DicabiAddress string  `bson:"direccionDicabi" json:"direccionDicabi"`
	Longitude     string  `bson:"longitud" json:"longitud"`
	Latitude      string  `bson:"latitud" json:"latitud"`
	ResidentialID string  `bson:"residencial_idresidencial" json:"residencial_idresidencial"`
}

func (m *ModelResidence) Normalize() {
	trim(&m.Land, &m.BuiltArea, &m.Levels, &m.Folio, &m.Partida,
		&m.DicabiAddress, &m.Longitude, &m.Latitude, &m.ResidentialID)
}

func (m *ModelResidence) Validate() FieldErrors {
	var c checker
	c.required("terreno", m.Land, "")
	c.required("metrosconstruccion", m.BuiltArea, "")
	c.required("niveles", m.Levels, "")
	if c.number("cuartos", m.Rooms, "") {
		c.nonNegative("cuartos", m.Rooms, "")
	}
	c.required("folio", m.Folio, "")
	c.required("partida", m.Partida, "")
	c.required("direccionDicabi", m.DicabiAddress, "")
	c.required("longitud", m.Longitude, "")
	c.required("latitud", m.Latitude, "")
	c.required("residencial_idresidencial", m.ResidentialID, "El residencial es obligatorio")
	return c.errs
}
