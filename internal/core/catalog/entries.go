package catalog

import "github.com/kirillkom/hsa-claims-engine/internal/core/domain"

var defaultEntries = []domain.CatalogEntry{
	// Medical Services
	{Name: "Abortion", Category: "Medical", IRSQualified: true, Description: "Legal abortion services are eligible"},
	{Name: "Acne treatment", Category: "Medical", IRSQualified: true, RequiresPrescription: true, Description: "For treatment of acne when prescribed"},
	{Name: "Acupuncture", Category: "Alternative Medicine", IRSQualified: true},
	{Name: "Adoption (medical expenses)", Category: "Medical", IRSQualified: true, Description: "Medical expenses for adopted child"},
	{Name: "Adult diapers", Category: "Medical Supplies", IRSQualified: true},
	{Name: "Age-related cognitive decline treatment", Category: "Medical", IRSQualified: true, RequiresLetterOfNecessity: true},
	{Name: "Alcohol addiction treatment", Category: "Medical", IRSQualified: true},
	{Name: "Allergy medicine", Category: "Pharmacy", IRSQualified: true, RequiresPrescription: true},
	{Name: "Allergy treatment", Category: "Medical", IRSQualified: true},
	{Name: "Ambulance", Category: "Medical", IRSQualified: true},
	{Name: "Annual physical examination", Category: "Medical", IRSQualified: true},
	{Name: "Artificial limbs", Category: "Medical Equipment", IRSQualified: true},
	{Name: "Artificial teeth", Category: "Dental", IRSQualified: true},

	// Dental Services
	{Name: "Dental treatment", Category: "Dental", IRSQualified: true},
	{Name: "Dental cleaning", Category: "Dental", IRSQualified: true},
	{Name: "Dentures", Category: "Dental", IRSQualified: true},
	{Name: "Dental X-rays", Category: "Dental", IRSQualified: true},
	{Name: "Dental fillings", Category: "Dental", IRSQualified: true},
	{Name: "Dental implants", Category: "Dental", IRSQualified: true},
	{Name: "Dental surgery", Category: "Dental", IRSQualified: true},
	{Name: "Orthodontia", Category: "Dental", IRSQualified: true},

	// Vision Services
	{Name: "Eye exam", Category: "Vision", IRSQualified: true},
	{Name: "Eyeglasses", Category: "Vision", IRSQualified: true},
	{Name: "Contact lenses", Category: "Vision", IRSQualified: true},
	{Name: "Contact lens solution", Category: "Vision", IRSQualified: true},
	{Name: "Laser eye surgery", Category: "Vision", IRSQualified: true},
	{Name: "Prescription sunglasses", Category: "Vision", IRSQualified: true},

	// Mental Health
	{Name: "Therapy session", Category: "Mental Health", IRSQualified: true},
	{Name: "Psychiatric care", Category: "Mental Health", IRSQualified: true},
	{Name: "Psychologist", Category: "Mental Health", IRSQualified: true},
	{Name: "Mental health counseling", Category: "Mental Health", IRSQualified: true},
	{Name: "Substance abuse treatment", Category: "Mental Health", IRSQualified: true},

	// Pharmacy
	{Name: "Prescription medication", Category: "Pharmacy", IRSQualified: true, RequiresPrescription: true},
	{Name: "Insulin", Category: "Pharmacy", IRSQualified: true},
	{Name: "Birth control pills", Category: "Pharmacy", IRSQualified: true, RequiresPrescription: true},
	{Name: "Antacids", Category: "Pharmacy", IRSQualified: true, RequiresPrescription: true},
	{Name: "Pain relievers", Category: "Pharmacy", IRSQualified: true, RequiresPrescription: true},
	{Name: "Cold medicine", Category: "Pharmacy", IRSQualified: true, RequiresPrescription: true},
	{Name: "Antibiotic ointment", Category: "Pharmacy", IRSQualified: true, RequiresPrescription: true},

	// Medical Equipment
	{Name: "Bandages", Category: "Medical Supplies", IRSQualified: true},
	{Name: "Crutches", Category: "Medical Equipment", IRSQualified: true},
	{Name: "Wheelchair", Category: "Medical Equipment", IRSQualified: true},
	{Name: "Blood pressure monitor", Category: "Medical Equipment", IRSQualified: true},
	{Name: "Hearing aids", Category: "Medical Equipment", IRSQualified: true},
	{Name: "CPAP machine", Category: "Medical Equipment", IRSQualified: true},
	{Name: "Oxygen equipment", Category: "Medical Equipment", IRSQualified: true},

	// Therapy
	{Name: "Physical therapy", Category: "Therapy", IRSQualified: true},
	{Name: "Speech therapy", Category: "Therapy", IRSQualified: true},
	{Name: "Occupational therapy", Category: "Therapy", IRSQualified: true},
	{Name: "Chiropractic treatment", Category: "Therapy", IRSQualified: true},
	{Name: "Massage therapy", Category: "Therapy", IRSQualified: true, RequiresLetterOfNecessity: true, Description: "Requires letter of medical necessity"},

	// Preventive Care
	{Name: "Flu shot", Category: "Preventive Care", IRSQualified: true},
	{Name: "Vaccines", Category: "Preventive Care", IRSQualified: true},
	{Name: "Mammogram", Category: "Preventive Care", IRSQualified: true},
	{Name: "Colonoscopy", Category: "Preventive Care", IRSQualified: true},
	{Name: "Well-baby visits", Category: "Preventive Care", IRSQualified: true},

	// Not IRS-qualified
	{Name: "Gym membership", Category: "Fitness", RequiresLetterOfNecessity: true, Description: "May be eligible with letter of medical necessity"},
	{Name: "Cosmetic surgery", Category: "Medical", RequiresLetterOfNecessity: true, Description: "Only eligible if medically necessary, not for cosmetic purposes"},
	{Name: "Teeth whitening", Category: "Dental", Description: "Cosmetic procedure, not eligible"},
	{Name: "Vitamins", Category: "Supplements", RequiresLetterOfNecessity: true, Description: "Only eligible with prescription for specific medical condition"},
	{Name: "Weight loss programs", Category: "Fitness", RequiresLetterOfNecessity: true, Description: "May be eligible with letter of medical necessity for specific conditions"},
	{Name: "Maternity clothes", Category: "Personal", Description: "Personal expense, not eligible"},
	{Name: "Funeral expenses", Category: "Personal", Description: "Not eligible"},
	{Name: "Childcare", Category: "Personal", Description: "Not eligible unless for medical care"},
	{Name: "Diapers for infants", Category: "Personal", Description: "Not eligible"},
	{Name: "Toothpaste", Category: "Personal", Description: "General health product, not eligible"},
}
