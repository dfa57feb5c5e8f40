package taxonomy

// DefaultTypeID identifies the fallback type used when nothing resolves
const DefaultTypeID = "other"

// DefaultCode is the submission code of the fallback type
const DefaultCode = "01028"

var (
	baseRequired = []string{
		FieldExpenseType, FieldTransactionDate, FieldVendor,
		FieldCurrency, FieldPaymentType, FieldAmount,
	}
	baseOptional = []string{FieldBusinessPurpose, FieldCity, FieldComment}
	baseHidden   = []string{FieldCountryCode, FieldOrgUnits}

	mealRequired = []string{
		FieldExpenseType, FieldTransactionDate, FieldBusinessPurpose,
		FieldMealType, FieldVendor, FieldCity,
		FieldCurrency, FieldPaymentType, FieldAmount,
	}
	mealClientRequired = append(append([]string{}, mealRequired...), FieldAttendees, FieldClientName)
	mealOptional       = []string{FieldComment, FieldBusinessUnitAllocation, FieldBusinessUnit}
	mealHidden         = []string{FieldCountryCode, FieldDomesticInternational, FieldOrgUnits}

	groundRequired = append(append([]string{}, baseRequired...), FieldStartingCity, FieldTravelType)

	employeeAttendees = AttendeeConstraints{Max: 20, Kinds: []string{"employee"}}
	clientAttendees   = AttendeeConstraints{
		Required: true,
		Min:      2,
		Max:      50,
		Kinds:    []string{"employee", "client", "prospect", "supplier", "business_guest"},
	}
)

// DefaultTypes returns the built-in catalog
func DefaultTypes() []ExpenseType {
	return []ExpenseType{
		// Meals & Entertainment
		mealEmployee("meals_employee_in_town", "Meals Employee(s) Only - In Town", "01028",
			"Meals with only company employees while in town", "Non-VAT MealsEEOnly Attendees"),
		mealEmployee("meals_employee_out_of_town", "Meals Employee(s) Only - Out of Town", "01029",
			"Meals with only company employees while traveling", "Non-VAT MealsEEOnly Attendees"),
		mealClient("meals_carrier", "Meals with Carrier(s)", "01030",
			"Business meals with carrier representatives", "Non-VAT Client Meals w/ Attendees"),
		mealClient("meals_client_prospect", "Meals with Client Prospect(s)", "01031",
			"Business meals with prospective clients", "Non-VAT Client Meals w/ Attendees"),
		mealClient("meals_client_in_town", "Meals with Client(s) - In Town", "01032",
			"Business meals with clients while in town", "Non-VAT Client Meals w/ Attendees"),
		mealClient("meals_client_out_of_town", "Meals with Client(s) - Out of Town", "01033",
			"Business meals with clients while traveling", "Non-VAT Client Meals w/ Attendees+Trvl Type"),
		mealClient("meals_ma_prospect", "Meals with M&A Prospect(s)", "01034",
			"Business meals with merger and acquisition prospects", "Non-VAT Client Meals w/ Attendees"),

		// Transportation
		general("airfare", "Airfare", "01001", CategoryTransportation, "Commercial flights"),
		general("car_rental", "Car Rental", "01002", CategoryTransportation, "Rental vehicles"),
		general("car_mileage", "Car Mileage", "01003", CategoryTransportation, "Personal vehicle mileage"),
		general("gas_fuel", "Gas/Fuel", "01007", CategoryTransportation, "Fuel for rental or leased vehicles"),
		general("car_rental_gas", "Car Rental Gas", "01007", CategoryTransportation, "Fuel for rental vehicles"),
		general("gas_leased_car", "Gas - Leased Car", "01007", CategoryTransportation, "Fuel for leased vehicles"),
		general("parking", "Parking", "01008", CategoryTransportation, "Parking fees"),
		general("parking_tolls", "Parking/Tolls", "01008", CategoryTransportation, "Parking and toll charges"),
		general("monthly_parking", "Monthly Parking", "01008", CategoryTransportation, "Recurring parking"),
		ground("taxi_rideshare", "Taxi/Rideshare", "01009", "Taxi and rideshare trips"),
		ground("rideshare", "Rideshare (Uber, Lyft)", "01009", "App-based rideshare trips"),
		ground("taxi_limo", "Taxi/Limo", "01009", "Taxi and limousine service"),
		ground("other_ground", "Other Ground Trans. (Shuttle, Bus, Ferry, Subway)", "01003", "Public and shared ground transport"),
		ground("train", "Train", "01010", "Rail travel"),
		ground("train_long_trip", "Train (LongTrip)", "01010", "Long distance rail travel"),

		// Lodging
		general("hotel", "Hotel", "01015", CategoryLodging, "Hotel stays"),
		general("lodging", "Lodging", "01015", CategoryLodging, "Other lodging"),

		// Office Supplies
		general("office_supplies", "Office Supplies", "01004", CategoryOfficeSupplies, "Stationery and office consumables"),
		general("software", "Software", "01005", CategoryOfficeSupplies, "Software licenses and subscriptions"),

		// Travel
		general("travel_expense", "Travel Expense", "01001", CategoryTravel, "General travel costs"),

		// Other
		general(DefaultTypeID, "Other", DefaultCode, CategoryOther, "Uncategorized business expense"),
	}
}

// DefaultTable builds the catalog with DefaultTypes
func DefaultTable() *Table {
	return NewTable(DefaultTypes(), DefaultTypeID)
}

func general(id, name, code string, category Category, description string) ExpenseType {
	return ExpenseType{
		ID:             id,
		Name:           name,
		Description:    description,
		Code:           code,
		Category:       category,
		Kind:           KindGeneral,
		RequiredFields: baseRequired,
		OptionalFields: baseOptional,
		HiddenFields:   baseHidden,
	}
}

func ground(id, name, code, description string) ExpenseType {
	et := general(id, name, code, CategoryTransportation, description)
	et.Kind = KindGroundTransport
	et.RequiredFields = groundRequired
	return et
}

func mealEmployee(id, name, code, description, form string) ExpenseType {
	return ExpenseType{
		ID:             id,
		Name:           name,
		Description:    description,
		Code:           code,
		Category:       CategoryMeals,
		Kind:           KindMealEmployee,
		Form:           form,
		RequiredFields: mealRequired,
		OptionalFields: mealOptional,
		HiddenFields:   mealHidden,
		Attendees:      employeeAttendees,
	}
}

func mealClient(id, name, code, description, form string) ExpenseType {
	et := mealEmployee(id, name, code, description, form)
	et.Kind = KindMealClient
	et.RequiredFields = mealClientRequired
	et.Attendees = clientAttendees
	return et
}

// MealTypes lists accepted meal sub-types
var MealTypes = []string{"Breakfast", "Lunch", "Dinner", "Other"}

// TravelTypes lists accepted travel types for ground transport
var TravelTypes = []string{"domestic", "international"}

// Currencies lists currencies offered by the entry form
var Currencies = []string{"USD", "EUR", "GBP", "CAD", "AUD", "JPY"}
